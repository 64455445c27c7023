package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registerAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "userhub_register_attempts_total",
		Help: "Number of register attempts grouped by status.",
	}, []string{"status"})

	captchaIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "userhub_captcha_issued_total",
		Help: "Number of captcha issue requests grouped by status.",
	}, []string{"status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "userhub_login_attempts_total",
		Help: "Number of login attempts grouped by status.",
	}, []string{"status"})

	refreshAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "userhub_refresh_attempts_total",
		Help: "Number of token refresh attempts grouped by status.",
	}, []string{"status"})
)

// IncRegister increments the register counter.
func IncRegister(status string) {
	registerAttempts.WithLabelValues(status).Inc()
}

// IncCaptcha increments the captcha issue counter.
func IncCaptcha(status string) {
	captchaIssued.WithLabelValues(status).Inc()
}

// IncLogin increments the login counter.
func IncLogin(status string) {
	loginAttempts.WithLabelValues(status).Inc()
}

// IncRefresh increments the refresh counter.
func IncRefresh(status string) {
	refreshAttempts.WithLabelValues(status).Inc()
}
