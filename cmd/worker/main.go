// Package main runs the background job worker (bulk badge document generation).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/validity-events/backend/config"
	"github.com/validity-events/backend/internal/badges"
	"github.com/validity-events/backend/internal/events"
	"github.com/validity-events/backend/internal/guests"
	"github.com/validity-events/backend/internal/raster"
	"github.com/validity-events/backend/internal/worker"
	"github.com/validity-events/backend/pkg/database"
	"github.com/validity-events/backend/pkg/queue"
	"github.com/validity-events/backend/pkg/redis"
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

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		BadgesBucket:         cfg.AWS.BadgesBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	guestRepo := guests.NewRepository(pool)
	eventRepo := events.NewRepository(pool)
	batchTracker := badges.NewBatchTracker(rdb.Client)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	w := worker.New(jobQueue, guestRepo, eventRepo, batchTracker, raster.NewSVGRasterizer(), s3Client, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go w.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
