package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/brand_go_server/internal/pkg/jwt"
	"github.com/qs3c/brand_go_server/internal/pkg/response"
)

const (
	UserIDKey  = "userID"
	BrandIDKey = "brandID"
)

// Auth JWT 认证中间件，写入登录账号与所属品牌
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil || claims.BrandID == "" {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(BrandIDKey, claims.BrandID)
		c.Next()
	}
}

// GetUserID 从上下文获取账号 ID
func GetUserID(c *gin.Context) (string, bool) {
	return getString(c, UserIDKey)
}

// GetBrandID 从上下文获取品牌 ID
func GetBrandID(c *gin.Context) (string, bool) {
	return getString(c, BrandIDKey)
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
