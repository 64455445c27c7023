package middleware

import (
	"net/http"
	"strings"

	"userhub/internal/auth"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// RequireLogin 验证 access token 是否有效，并把 claims 写入上下文
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := auth.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// 将用户信息写入上下文
		c.Set(claimsKey, claims)
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// RequirePermission 检查 token 中的权限是否覆盖路由声明的 capability code。
// 必须挂在 RequireLogin 之后。
func RequirePermission(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}
		for _, p := range claims.Permissions {
			if p == code {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		c.Abort()
	}
}

// ClaimsFrom returns the claims placed in the context by RequireLogin,
// or nil when the request never passed the login middleware.
func ClaimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
