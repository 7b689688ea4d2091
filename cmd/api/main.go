package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/homehub/homehub-api/internal/handler"
	internalMiddleware "github.com/homehub/homehub-api/internal/middleware"
	"github.com/homehub/homehub-api/internal/repository"
	"github.com/homehub/homehub-api/internal/service"
	"github.com/homehub/homehub-api/pkg/cache"
	"github.com/homehub/homehub-api/pkg/config"
	"github.com/homehub/homehub-api/pkg/database"
	"github.com/homehub/homehub-api/pkg/logger"
	corsmiddleware "github.com/homehub/homehub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/homehub/homehub-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Unread.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, unread cache disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	userSvc := service.NewUserService(userRepo)
	scheduleSvc := service.NewScheduleService(scheduleRepo, userRepo, validate, logr)
	unreadSvc := service.NewUnreadService(messageRepo, redisClient, cfg.Unread.CacheTTL, metricsSvc, logr)
	messageSvc := service.NewMessageService(messageRepo, service.NewAuthorizationGate(), unreadSvc, validate, logr, service.MessageServiceConfig{
		MaxContentLength: cfg.Messages.MaxContentLength,
		ListLimit:        cfg.Messages.ListLimit,
	})

	userHandler := handler.NewUserHandler(userSvc)
	weekHandler := handler.NewWeekHandler()
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	messageHandler := handler.NewMessageHandler(messageSvc, unreadSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalMiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/users", userHandler.List)
		api.GET("/users/:id", userHandler.Get)

		api.GET("/weeks/current", weekHandler.Current)
		api.GET("/weeks/resolve", weekHandler.Resolve)

		api.GET("/schedules", scheduleHandler.GetWeekAll)
		api.GET("/schedules/:userId", scheduleHandler.GetWeek)
		api.PUT("/schedules/:userId/days/:day", scheduleHandler.ReplaceDay)
		api.DELETE("/schedules/:userId/days/:day/blocks/:blockId", scheduleHandler.DeleteBlock)

		api.GET("/messages", messageHandler.List)
		api.POST("/messages", messageHandler.Post)
		api.POST("/messages/:id/read", messageHandler.MarkRead)
		api.DELETE("/messages/:id", messageHandler.Delete)
		api.GET("/messages/unread-count", messageHandler.UnreadCount)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
