// Package main runs the event management HTTP server with WebSocket feeds
// and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/validity-events/backend/config"
	"github.com/validity-events/backend/internal/auth"
	"github.com/validity-events/backend/internal/badge"
	"github.com/validity-events/backend/internal/badges"
	"github.com/validity-events/backend/internal/checkin"
	"github.com/validity-events/backend/internal/events"
	"github.com/validity-events/backend/internal/guests"
	"github.com/validity-events/backend/internal/middleware"
	"github.com/validity-events/backend/internal/models"
	"github.com/validity-events/backend/internal/raster"
	"github.com/validity-events/backend/internal/realtime"
	"github.com/validity-events/backend/internal/reports"
	"github.com/validity-events/backend/pkg/database"
	"github.com/validity-events/backend/pkg/queue"
	"github.com/validity-events/backend/pkg/redis"
	"github.com/validity-events/backend/pkg/response"
	"github.com/validity-events/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			BadgesBucket:         cfg.AWS.BadgesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
	hub := realtime.NewHub(logger, redisPubSub, redisPubSub)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo)

	// Guests
	guestRepo := guests.NewRepository(pool)
	guestHandler := guests.NewHandler(guestRepo, eventRepo, logger)

	// Check-in
	checkinRepo := checkin.NewRepository(pool)
	checkinHandler := checkin.NewHandler(checkinRepo, guestRepo, hub, logger)

	// Reports
	reportRepo := reports.NewRepository(pool)
	reportHandler := reports.NewHandler(reportRepo, logger)

	// Badges: rendering, tokens, confirmation documents, templates, bulk jobs
	theme := badge.Theme{
		PrimaryColor: cfg.Badge.PrimaryColor,
		TextColor:    cfg.Badge.TextColor,
		FontSize:     cfg.Badge.FontSize,
		ShowQRCode:   true,
		ShowLogo:     true,
	}
	printer := badge.NewSpoolPrinter(cfg.Badge.SpoolDir, logger)
	compositor := badge.NewCompositor(printer, logger)
	templateRepo := badges.NewTemplateRepository(pool)
	batchTracker := badges.NewBatchTracker(rdb.Client)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	badgeHandlerCfg := badges.HandlerConfig{
		Guests:      guestRepo,
		Events:      eventRepo,
		Templates:   templateRepo,
		Compositor:  compositor,
		Rasterizer:  raster.NewSVGRasterizer(),
		Queue:       jobQueue,
		Batches:     batchTracker,
		Broadcaster: hub,
		Theme:       theme,
		Logger:      logger,
	}
	if s3Client != nil {
		badgeHandlerCfg.Presigner = s3Client
	}
	badgeHandler := badges.NewHandler(badgeHandlerCfg)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: guest self-registration and confirmation download
	router.POST("/api/events/:id/register", guestHandler.Register)
	router.GET("/api/guests/:id/confirmation.pdf", badgeHandler.ConfirmationPDF)
	router.GET("/api/guests/:id/qr.png", badgeHandler.QRCodePNG)

	// Auth (public)
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	// Protected API (JWT required)
	api := router.Group("/api")
	api.Use(middleware.JWT(jwtService))
	{
		// Users
		api.GET("/users", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), authHandler.List)

		// Events
		api.GET("/events", eventHandler.List)
		api.POST("/events", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), eventHandler.Create)
		api.GET("/events/:id", eventHandler.GetByID)
		api.PUT("/events/:id", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), eventHandler.Update)
		api.DELETE("/events/:id", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), eventHandler.Delete)

		// Guests
		api.GET("/events/:id/guests", guestHandler.List)
		api.POST("/events/:id/guests", guestHandler.RegisterOnSite)
		api.GET("/guests/:id", guestHandler.Get)

		// Check-in
		api.POST("/checkin", checkinHandler.CheckIn)
		api.GET("/events/:id/checkins", checkinHandler.List)

		// Reports
		api.GET("/events/:id/report", reportHandler.EventSummary)

		// Badge rendering and tokens
		api.GET("/guests/:id/badge.svg", badgeHandler.BadgeSVG)
		api.GET("/guests/:id/badge.png", badgeHandler.BadgePNG)
		api.GET("/guests/:id/barcode.svg", badgeHandler.BarcodeSVG)
		api.GET("/guests/:id/barcode.png", badgeHandler.Code128PNG)
		api.POST("/guests/:id/badge/print", badgeHandler.PrintBadge)

		// Badge templates
		api.GET("/badge-templates", badgeHandler.ListTemplates)
		api.POST("/badge-templates", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), badgeHandler.CreateTemplate)
		api.GET("/badge-templates/:id", badgeHandler.GetTemplate)
		api.PUT("/badge-templates/:id", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), badgeHandler.UpdateTemplate)
		api.DELETE("/badge-templates/:id", middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin), badgeHandler.DeleteTemplate)

		// Bulk badge generation
		api.POST("/events/:id/badges/batch", badgeHandler.EnqueueBatch)
		api.GET("/badges/batches/:id", badgeHandler.BatchStatus)
	}

	// WebSocket (token in query; no Authorization header required)
	router.GET("/ws", realtime.ServeWs(hub, jwtService, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
