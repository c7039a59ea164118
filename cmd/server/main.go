package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"sudooom.im.groupchat/internal/config"
	"sudooom.im.groupchat/internal/database"
	"sudooom.im.groupchat/internal/event"
	"sudooom.im.groupchat/internal/handler"
	"sudooom.im.groupchat/internal/presence"
	"sudooom.im.groupchat/internal/repository"
	"sudooom.im.groupchat/internal/router"
	"sudooom.im.groupchat/internal/service"
	"sudooom.im.groupchat/pkg/jwt"
	"sudooom.im.groupchat/pkg/snowflake"
)

func main() {
	// 初始化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// 加载配置
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接数据库
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL", "host", cfg.Database.Host)

	// 执行数据库迁移
	if err := database.RunMigrations(database.BuildDSN(cfg.Database), "file://"+cfg.Database.MigrationsPath); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 连接 Redis
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()
	logger.Info("Connected to Redis", "host", cfg.Redis.Host)

	// 连接 NATS
	natsClient, err := event.NewClient(cfg.NATS)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)

	// 初始化 JWT 服务
	jwtService := jwt.NewService(
		cfg.JWT.SecretKey,
		cfg.JWT.AccessExpire,
		cfg.JWT.RefreshExpire,
	)

	// 初始化雪花ID生成器
	sfNode, err := snowflake.NewNode(1)
	if err != nil {
		logger.Error("Failed to create snowflake node", "error", err)
		os.Exit(1)
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	tokenRepo := repository.NewTokenRepository(redisClient)

	// 初始化事件发布与在线状态
	publisher := event.NewPublisher(natsClient.Conn())
	registry := presence.NewRegistry(redisClient)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, tokenRepo, jwtService, sfNode)
	groupService := service.NewGroupService(groupRepo, userRepo, publisher, sfNode)
	messageService := service.NewMessageService(messageRepo, groupRepo, userRepo, publisher, sfNode)

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	groupHandler := handler.NewGroupHandler(groupService)
	messageHandler := handler.NewMessageHandler(messageService)
	presenceHandler := handler.NewPresenceHandler(registry)

	// 设置路由
	r := router.SetupRouter(cfg, jwtService, tokenRepo, redisClient,
		authHandler, groupHandler, messageHandler, presenceHandler)

	// 启动服务器
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	go func() {
		logger.Info("Server started", "addr", addr, "mode", cfg.App.Mode)
		if err := r.Run(addr); err != nil {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancel()
	logger.Info("Server stopped")
}

// connectRedis 连接 Redis
func connectRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}
