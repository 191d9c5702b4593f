package middleware

import (
	"IdeaVault/internal/model"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckRoles 当前用户拥有任一指定角色即放行，需挂在 AuthMiddleware 之后
func CheckRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roles := model.Roles(c.GetStringSlice("roles"))
		for _, required := range requiredRoles {
			if roles.Has(required) {
				c.Next()
				return
			}
		}
		response.Fail(c, response.Forbidden, service.UnauthorizedError.Error())
		c.Abort()
	}
}
