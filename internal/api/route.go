package api

import (
	"IdeaVault/internal/api/config"
	"IdeaVault/internal/api/middleware"
	"IdeaVault/internal/pkg/consts"
	"IdeaVault/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter accessIndex 为访问日志写入 Logstash 时的目标索引
func SetupRouter(group *HandlersGroup, serverCfg config.ServerConfig, accessIndex string) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware(serverCfg.AllowedOrigins))
	logger.SetupGin(r, accessIndex)

	requirePro := middleware.RequireMembership(group.Membership, consts.TierPro)
	interactions := group.InteractionHandler

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/signup", group.UserHandler.SignUp)
			authGroup.POST("/signin", group.UserHandler.SignIn)
			authGroup.POST("/signout", middleware.AuthMiddleware(), group.UserHandler.SignOut)
		}

		userGroup := apiGroup.Group("/user")
		userGroup.Use(middleware.AuthMiddleware())
		{
			userGroup.GET("", group.UserHandler.GetMe)
			userGroup.PUT("", group.UserHandler.UpdateMe)
		}

		profileGroup := apiGroup.Group("/profile")
		{
			profileGroup.GET("/u/:username", group.ProfileHandler.GetProfileByUsername)

			authProfile := profileGroup.Group("")
			authProfile.Use(middleware.AuthMiddleware())
			{
				authProfile.GET("", group.ProfileHandler.GetMyProfile)
				authProfile.PUT("", group.ProfileHandler.UpdateProfile)
				authProfile.POST("/avatar", group.ProfileHandler.UploadAvatar)
				authProfile.POST("/onboarding", group.ProfileHandler.CompleteOnboarding)
				authProfile.POST("/tutorial", group.ProfileHandler.CompleteTutorial)
			}
		}

		settingsGroup := apiGroup.Group("/settings")
		settingsGroup.Use(middleware.AuthMiddleware())
		{
			settingsGroup.GET("", group.SettingsHandler.GetSettings)
			settingsGroup.PUT("", group.SettingsHandler.UpdateSettings)
		}

		ideaGroup := apiGroup.Group("/ideas")
		{
			ideaGroup.GET("/:id", middleware.AuthOptionalMiddleware(), group.IdeaHandler.GetIdea)
			ideaGroup.GET("/:id/comments", middleware.AuthOptionalMiddleware(), interactions.ListComments(consts.TargetIdea))

			authIdea := ideaGroup.Group("")
			authIdea.Use(middleware.AuthMiddleware())
			{
				authIdea.POST("", group.IdeaHandler.CreateIdea)
				authIdea.GET("", group.IdeaHandler.ListIdeas)
				authIdea.GET("/trash", group.IdeaHandler.ListTrash)
				authIdea.POST("/import", group.IdeaHandler.ImportIdea)
				authIdea.PUT("/:id", group.IdeaHandler.UpdateIdea)
				authIdea.DELETE("/:id", group.IdeaHandler.DeleteIdea)
				authIdea.POST("/:id/restore", group.IdeaHandler.RestoreIdea)
				authIdea.DELETE("/:id/purge", group.IdeaHandler.PurgeIdea)
				authIdea.POST("/:id/share", group.IdeaHandler.ShareIdea)
				authIdea.POST("/:id/like", interactions.ToggleLike(consts.TargetIdea))
				authIdea.GET("/:id/state", interactions.GetState(consts.TargetIdea))
				authIdea.POST("/:id/comments", interactions.CreateComment(consts.TargetIdea))
				authIdea.DELETE("/:id/comments/:comment_id", interactions.DeleteComment(consts.TargetIdea))
			}
		}

		folderGroup := apiGroup.Group("/folders")
		folderGroup.Use(middleware.AuthMiddleware())
		{
			folderGroup.GET("", group.IdeaHandler.ListFolders)
			folderGroup.POST("", group.IdeaHandler.CreateFolder)
			folderGroup.PUT("/:id", group.IdeaHandler.RenameFolder)
			folderGroup.DELETE("/:id", group.IdeaHandler.DeleteFolder)
		}

		communityGroup := apiGroup.Group("/community")
		{
			// 读接口可匿名访问，登录后附带点赞/收藏状态
			readGroup := communityGroup.Group("")
			readGroup.Use(middleware.AuthOptionalMiddleware())
			{
				readGroup.GET("/channels", group.CommunityHandler.ListChannels)
				readGroup.GET("/posts", group.CommunityHandler.ListPosts)
				readGroup.GET("/posts/search", group.CommunityHandler.SearchPosts)
				readGroup.GET("/posts/:id", group.CommunityHandler.GetPost)
				readGroup.GET("/posts/:id/state", interactions.GetState(consts.TargetPost))
				readGroup.GET("/posts/:id/comments", interactions.ListComments(consts.TargetPost))
				readGroup.GET("/users/:id/posts", group.CommunityHandler.ListUserPosts)
			}

			writeGroup := communityGroup.Group("")
			writeGroup.Use(middleware.AuthMiddleware(), requirePro)
			{
				writeGroup.PUT("/posts/:id", group.CommunityHandler.UpdatePost)
				writeGroup.DELETE("/posts/:id", group.CommunityHandler.DeletePost)
				writeGroup.PUT("/posts/:id/pin", group.CommunityHandler.PinPost)
				writeGroup.POST("/posts/:id/like", interactions.ToggleLike(consts.TargetPost))
				writeGroup.POST("/posts/:id/comments", interactions.CreateComment(consts.TargetPost))
				writeGroup.DELETE("/posts/:id/comments/:comment_id", interactions.DeleteComment(consts.TargetPost))
			}
		}

		favoriteGroup := apiGroup.Group("/favorites")
		favoriteGroup.Use(middleware.AuthMiddleware())
		{
			favoriteGroup.GET("", interactions.ListFavorites)
			favoriteGroup.POST("/toggle", interactions.ToggleFavorite)
		}

		messageGroup := apiGroup.Group("/messages")
		messageGroup.Use(middleware.AuthMiddleware(), requirePro)
		{
			messageGroup.POST("", group.MessageHandler.SendMessage)
			messageGroup.GET("/inbox", group.MessageHandler.ListInbox)
			messageGroup.GET("/unread", group.MessageHandler.UnreadCount)
			messageGroup.GET("/threads/:id", group.MessageHandler.GetThread)
			messageGroup.POST("/threads/:id/read", group.MessageHandler.MarkThreadRead)
			messageGroup.POST("/:id/read", group.MessageHandler.MarkRead)
		}

		collabGroup := apiGroup.Group("/collaborations")
		collabGroup.Use(middleware.AuthMiddleware(), requirePro)
		{
			collabGroup.POST("", group.CollaborationHandler.RequestCollaboration)
			collabGroup.GET("/incoming", group.CollaborationHandler.ListIncoming)
			collabGroup.GET("/outgoing", group.CollaborationHandler.ListOutgoing)
			collabGroup.POST("/:id/accept", group.CollaborationHandler.Accept)
			collabGroup.POST("/:id/reject", group.CollaborationHandler.Reject)
		}

		subscriptionGroup := apiGroup.Group("/subscription")
		{
			subscriptionGroup.POST("/webhook", group.SubscriptionHandler.Webhook)

			authSub := subscriptionGroup.Group("")
			authSub.Use(middleware.AuthMiddleware())
			{
				authSub.GET("", group.SubscriptionHandler.GetMembership)
				authSub.POST("/checkout", group.SubscriptionHandler.Checkout)
				authSub.POST("/cancel", group.SubscriptionHandler.Cancel)
			}
		}

		apiGroup.GET("/routes/resolve", middleware.AuthOptionalMiddleware(), group.RouteHandler.Resolve)

		sysbox := apiGroup.Group("/sysbox")
		sysbox.Use(middleware.AuthMiddleware())
		{
			sysbox.GET("/list", group.SysBoxHandler.ListNotifications)
			sysbox.GET("/unread", group.SysBoxHandler.UnreadCount)
			sysbox.POST("/read/all", group.SysBoxHandler.MarkAllRead)
			sysbox.POST("/:id/read", group.SysBoxHandler.MarkRead)
			sysbox.DELETE("/:id", group.SysBoxHandler.DeleteNotification)
		}

		// 需要登录 & 拥有 admin 角色
		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles(consts.RoleAdmin))
		{
			adminGroup.POST("/populate-channels", group.SeedHandler.PopulateChannels)
		}

		apiGroup.GET("/feed", middleware.AuthMiddleware(), requirePro, group.FeedHandler.Connect)
	}

	return r
}
