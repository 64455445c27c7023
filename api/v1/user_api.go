package v1

import (
	"errors"
	"net/http"

	"userhub/api/v1/request"
	"userhub/internal/auth"
	"userhub/internal/metrics"
	"userhub/service"

	"github.com/gin-gonic/gin"
)

// UserAPI exposes HTTP handlers for the captcha/register/login/refresh flows.
// UserAPI 聚合了所有与用户鉴权相关的 HTTP Handler。
type UserAPI struct {
	service *service.UserService
}

// NewUserAPI wires the service layer into the HTTP handlers.
func NewUserAPI(s *service.UserService) *UserAPI {
	return &UserAPI{service: s}
}

// Register handles new account creation.
func (u *UserAPI) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncRegister("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msg, err := u.service.Register(service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		NickName: req.NickName,
		Email:    req.Email,
		Captcha:  req.Captcha,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaExpired),
			errors.Is(err, service.ErrCaptchaMismatch),
			errors.Is(err, service.ErrUserExists):
			metrics.IncRegister("rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			metrics.IncRegister("internal_error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	metrics.IncRegister("success")
	c.String(http.StatusOK, msg)
}

// Captcha issues a registration captcha for the given mail address.
func (u *UserAPI) Captcha(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		metrics.IncCaptcha("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}
	msg, err := u.service.IssueCaptcha(address)
	if err != nil {
		metrics.IncCaptcha("internal_error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.IncCaptcha("success")
	c.String(http.StatusOK, msg)
}

// Login authenticates a regular user and returns the view with a token pair.
func (u *UserAPI) Login(c *gin.Context) {
	u.login(c, false)
}

// AdminLogin authenticates against the admin partition.
func (u *UserAPI) AdminLogin(c *gin.Context) {
	u.login(c, true)
}

func (u *UserAPI) login(c *gin.Context, isAdmin bool) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncLogin("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vo, err := u.service.Login(req.Username, req.Password, isAdmin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrBadPassword):
			metrics.IncLogin("rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			metrics.IncLogin("internal_error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	info := vo.UserInfo
	vo.AccessToken, err = auth.GenerateAccessToken(info.ID, info.Username, info.Roles, info.Permissions)
	if err != nil {
		metrics.IncLogin("internal_error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	vo.RefreshToken, err = auth.GenerateRefreshToken(info.ID)
	if err != nil {
		metrics.IncLogin("internal_error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.IncLogin("success")
	c.JSON(http.StatusOK, vo)
}

// Refresh exchanges a live refresh token for a fresh token pair. The new
// access claims are rebuilt from current role/permission data, and identity
// is always resolved in the non-admin partition.
func (u *UserAPI) Refresh(c *gin.Context) {
	claims, err := auth.ParseToken(c.Query("refreshToken"))
	if err != nil {
		metrics.IncRefresh("unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token 已失效，请重新登录"})
		return
	}

	user, err := u.service.FindUserByID(claims.UserID, false)
	if err != nil {
		metrics.IncRefresh("unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token 已失效，请重新登录"})
		return
	}

	accessToken, err := auth.GenerateAccessToken(user.ID, user.Username, user.Roles, user.Permissions)
	if err != nil {
		metrics.IncRefresh("internal_error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	refreshToken, err := auth.GenerateRefreshToken(user.ID)
	if err != nil {
		metrics.IncRefresh("internal_error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	metrics.IncRefresh("success")
	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

// InitData seeds the development fixtures. Not idempotent.
func (u *UserAPI) InitData(c *gin.Context) {
	if err := u.service.InitData(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, "done")
}
