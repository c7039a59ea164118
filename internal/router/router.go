package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"sudooom.im.groupchat/internal/config"
	"sudooom.im.groupchat/internal/handler"
	"sudooom.im.groupchat/internal/middleware"
	"sudooom.im.groupchat/internal/repository"
	"sudooom.im.groupchat/pkg/jwt"
)

// SetupRouter 设置路由
func SetupRouter(
	cfg *config.Config,
	jwtService *jwt.Service,
	tokenRepo *repository.TokenRepository,
	rdb *redis.Client,
	authHandler *handler.AuthHandler,
	groupHandler *handler.GroupHandler,
	messageHandler *handler.MessageHandler,
	presenceHandler *handler.PresenceHandler,
) *gin.Engine {
	// 设置 Gin 模式
	gin.SetMode(cfg.App.Mode)

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowCredentials,
	))

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证接口（无需登录）
		auth := v1.Group("/auth")
		if cfg.RateLimit.Enabled {
			auth.Use(middleware.RateLimit(rdb, cfg.RateLimit.AuthPerMin, "auth"))
		}
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}

		// 需要认证的接口
		authenticated := v1.Group("")
		authenticated.Use(middleware.TokenAuth(jwtService, tokenRepo, cfg.JWT.AutoRenewThreshold))
		{
			authenticated.POST("/auth/logout", authHandler.Logout)
			authenticated.GET("/auth/check", authHandler.Check)
			authenticated.PUT("/auth/update-avatar", authHandler.UpdateAvatar)

			// 群组接口
			groups := authenticated.Group("/groups")
			{
				groups.POST("", groupHandler.Create)
				groups.GET("", groupHandler.List)
				groups.POST("/set-identity", groupHandler.SetIdentity)
				groups.GET("/:groupId", groupHandler.Get)
				groups.POST("/promote", groupHandler.Promote)
				groups.POST("/demote", groupHandler.Demote)
				groups.POST("/add-member", groupHandler.AddMember)

				// 群消息
				messages := groups.Group("")
				if cfg.RateLimit.Enabled {
					messages.Use(middleware.RateLimit(rdb, cfg.RateLimit.MessagePerMin, "message"))
				}
				{
					messages.GET("/:groupId/messages", messageHandler.History)
					messages.POST("/:groupId/messages", messageHandler.Send)
					messages.POST("/important-response/:messageId", messageHandler.Respond)
					messages.PUT("/group-messages/:messageId/ignore", messageHandler.Ignore)
				}
			}

			// 单聊接口
			direct := authenticated.Group("/messages")
			{
				direct.GET("/users", authHandler.ListUsers)
				direct.POST("/send", messageHandler.SendDirect)
				direct.GET("/:userId", messageHandler.DirectHistory)
			}

			// 在线状态
			presenceGroup := authenticated.Group("/presence")
			{
				presenceGroup.POST("/heartbeat", presenceHandler.Heartbeat)
				presenceGroup.GET("/online", presenceHandler.Online)
			}
		}
	}

	return r
}
