package handler

import (
	"IdeaVault/internal/api/dto"
	"IdeaVault/internal/pkg/response"
	"IdeaVault/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhookSecretHeader 支付回调携带的共享密钥
const WebhookSecretHeader = "X-Webhook-Secret"

type SubscriptionHandler struct {
	subscriptionSvc service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionSvc service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionSvc: subscriptionSvc}
}

func (s *SubscriptionHandler) GetMembership(c *gin.Context) {
	res, err := s.subscriptionSvc.GetMembership(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *SubscriptionHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.subscriptionSvc.Checkout(c.Request.Context(), c.GetUint64("user_id"), req.Tier)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Webhook 支付服务回调，不走用户鉴权
func (s *SubscriptionHandler) Webhook(c *gin.Context) {
	var req dto.CheckoutWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	res, err := s.subscriptionSvc.CompleteCheckout(c.Request.Context(), c.GetHeader(WebhookSecretHeader), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

func (s *SubscriptionHandler) Cancel(c *gin.Context) {
	res, err := s.subscriptionSvc.CancelSubscription(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}
