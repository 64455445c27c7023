package validator

import (
	"github.com/go-playground/validator/v10"
)

// IsCaptchaCode 是一个自定义的校验函数，用于验证 6 位数字验证码格式
func IsCaptchaCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != 6 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
