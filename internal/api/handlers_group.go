package api

import (
	"IdeaVault/internal/api/handler"
	"IdeaVault/internal/service"
)

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler          *handler.UserHandler
	ProfileHandler       *handler.ProfileHandler
	SettingsHandler      *handler.SettingsHandler
	IdeaHandler          *handler.IdeaHandler
	CommunityHandler     *handler.CommunityHandler
	InteractionHandler   *handler.InteractionHandler
	MessageHandler       *handler.MessageHandler
	CollaborationHandler *handler.CollaborationHandler
	SubscriptionHandler  *handler.SubscriptionHandler
	RouteHandler         *handler.RouteHandler
	SeedHandler          *handler.SeedHandler
	SysBoxHandler        *handler.SysBoxHandler
	FeedHandler          *handler.FeedHandler

	// Membership 会员等级校验
	Membership service.ProChecker
}
