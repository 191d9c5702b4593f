package middleware

import (
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/redis"
	"IdeaVault/internal/pkg/security"
	"context"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入 UID，失败或缺失则 UID 为 0
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", uint64(0))

		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := security.ValidateToken(token)
		if err != nil {
			c.Next()
			return
		}
		if signature, err := security.ExtractSignature(token); err == nil {
			if value, _ := redis.GetValue(c.Request.Context(), consts.TokenBlacklistKey+signature); value != "" {
				c.Next()
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Set("roles", claims.Roles)
		newCtx := context.WithValue(c.Request.Context(), "user_id", claims.UserID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
