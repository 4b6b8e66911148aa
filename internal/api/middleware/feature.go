package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/brand_go_server/internal/pkg/response"
)

// FeatureChecker 查询品牌当前套餐是否包含某功能
type FeatureChecker interface {
	HasFeature(brandID, role, feature string) (bool, error)
}

// RequireFeature 套餐功能检查中间件，需放在 Auth 之后
func RequireFeature(checker FeatureChecker, role, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		brandID, ok := GetBrandID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		allowed, err := checker.HasFeature(brandID, role, feature)
		if err != nil {
			response.ServerError(c, "套餐检查失败")
			c.Abort()
			return
		}

		if !allowed {
			response.FeatureError(c, "")
			c.Abort()
			return
		}

		c.Next()
	}
}
