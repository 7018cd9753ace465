package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"art-market/config"
	"art-market/internal/handler"
	"art-market/internal/model"
	"art-market/internal/repository"
	"art-market/internal/service"
	dbPkg "art-market/pkg/db"
	"art-market/pkg/jwt"
	"art-market/pkg/logger"
	"art-market/pkg/realtime"
	"art-market/pkg/redis"
	"art-market/pkg/response"
	"art-market/pkg/sanitize"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("art-market messaging backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("database_host", cfg.Database.Host),
		zap.String("database_name", cfg.Database.Database),
		zap.String("log_level", cfg.Log.Level),
	)

	db, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("close database", zap.Error(err))
		}
	}()

	if err := dbPkg.AutoMigrate(
		&model.User{},
		&model.Artist{},
		&model.Message{},
		&model.Conversation{},
		&model.Notification{},
	); err != nil {
		log.Fatal("auto migration failed", zap.Error(err))
	}

	if err := redis.InitRedis(cfg.Redis); err != nil {
		// the service degrades to database-only behaviour without redis
		log.Warn("redis unavailable, caching and presence disabled", zap.Error(err))
	}
	defer func() {
		if err := redis.Close(); err != nil {
			log.Error("close redis", zap.Error(err))
		}
	}()

	sanitizer, err := sanitize.New(sanitize.Rules{
		PhonePattern: cfg.Sanitizer.PhonePattern,
		PricePattern: cfg.Sanitizer.PricePattern,
		Mask:         cfg.Sanitizer.Mask,
		Warning:      cfg.Sanitizer.Warning,
	})
	if err != nil {
		log.Fatal("invalid sanitizer rules", zap.Error(err))
	}

	jwtSvc := jwt.NewJWTService(cfg.JWT)

	userRepo := repository.NewUserRepository(db)
	artistRepo := repository.NewArtistRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := realtime.NewHub()
	directorySvc := service.NewDirectoryService(userRepo, artistRepo)
	notificationSvc := service.NewNotificationService(notificationRepo, 256)
	notificationSvc.Start()
	defer notificationSvc.Stop()

	messageSvc := service.NewMessageService(
		messageRepo,
		conversationRepo,
		userRepo,
		directorySvc,
		notificationSvc,
		hub,
		sanitizer,
	)
	userSvc := service.NewUserService(userRepo, userRepo, artistRepo, jwtSvc)

	userHandler := handler.NewUserHandler(userSvc)
	messageHandler := handler.NewMessageHandler(messageSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	gateway := realtime.NewGateway(hub, messageSvc, jwtSvc, cfg.WebSocket)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logger.RequestLogger())
	router.Use(logger.Recovery())

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			status = "db-down"
		}
		response.OK(c, gin.H{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)

			me := auth.Group("")
			me.Use(jwtSvc.AuthMiddleware())
			me.GET("/me", userHandler.Me)
		}

		messages := api.Group("/messages")
		messages.Use(jwtSvc.AuthMiddleware())
		{
			messages.GET("/conversations", messageHandler.GetConversations)
			messages.GET("/:other_user_id", messageHandler.GetThread)
			messages.GET("/:other_user_id/status", messageHandler.GetStatus)
			messages.GET("/:other_user_id/presence", messageHandler.GetPresence)
			messages.POST("", messageHandler.Send)
			messages.POST("/:other_user_id/finalize", messageHandler.Finalize)
			messages.PUT("/:other_user_id/read", messageHandler.MarkRead)
		}

		notifications := api.Group("/notifications")
		notifications.Use(jwtSvc.AuthMiddleware())
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}
	}

	router.GET("/ws", gateway.Handler)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("http server listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}
