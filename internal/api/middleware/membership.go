package middleware

import (
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"
	log "log/slog"

	"github.com/gin-gonic/gin"
)

// RequireMembership 要求当前用户达到指定会员等级，需挂在 AuthMiddleware 之后
func RequireMembership(checker service.ProChecker, tier string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tier != consts.TierPro {
			c.Next()
			return
		}

		userID := c.GetUint64("user_id")
		if userID == 0 {
			response.FailWithData(c, response.Unauthorized, service.ErrAuthRequired.Error(),
				gin.H{"redirect": service.RedirectLogin})
			c.Abort()
			return
		}

		ok, err := checker.IsPro(c.Request.Context(), userID)
		if err != nil {
			log.ErrorContext(c.Request.Context(), "membership check failed", "userID", userID, "err", err)
			response.Fail(c, response.InternalServerError, service.ErrUnexpected.Error())
			c.Abort()
			return
		}
		if !ok {
			response.FailWithData(c, response.PaymentRequired, service.ErrProRequired.Error(),
				gin.H{"redirect": service.RedirectPricing})
			c.Abort()
			return
		}

		c.Next()
	}
}
