package main

import (
	"context"
	"fmt"

	"commercial-file-service/internal/config"
	"commercial-file-service/internal/mailer"
	"commercial-file-service/internal/repository/BlackListRepo"
	"commercial-file-service/internal/repository/fileRepo"
	"commercial-file-service/internal/repository/historyRepo"
	"commercial-file-service/internal/repository/notificationRepo"
	"commercial-file-service/internal/repository/referenceRepo"
	"commercial-file-service/internal/repository/refreshToken"
	"commercial-file-service/internal/repository/userRepo"
	"commercial-file-service/internal/scheduler"
	"commercial-file-service/internal/service/authService"
	"commercial-file-service/internal/service/fileService"
	"commercial-file-service/internal/service/historyService"
	"commercial-file-service/internal/service/notificationService"
	"commercial-file-service/internal/service/referenceService"
	"commercial-file-service/internal/service/schedulerService"
	"commercial-file-service/internal/storage"
	"commercial-file-service/pkg/clock"
	"commercial-file-service/pkg/database/postgres"
	"commercial-file-service/pkg/database/redis"
	"commercial-file-service/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// app holds every wired service. Close releases the connections it opened.
type app struct {
	cfg   *config.Config
	pool  *pgxpool.Pool
	redis *goredis.Client

	auth          *authService.AuthService
	files         *fileService.FileService
	history       *historyService.HistoryService
	notifications *notificationService.NotificationService
	references    *referenceService.ReferenceService
	runner        *scheduler.Runner
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, err
	}

	a := &app{cfg: cfg, pool: pool, redis: redisClient}
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg
	clk := clock.New(cfg.Location())

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	if m, ok := store.(*storage.MinIOStorage); ok {
		if err := m.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to prepare bucket: %w", err)
		}
	}

	mail, err := mailer.New(cfg.SMTP, cfg.Notification.Email)
	if err != nil {
		return fmt.Errorf("failed to init mailer: %w", err)
	}

	tx := postgres.NewTransactor(a.pool)
	users := userRepo.New(a.pool)
	files := fileRepo.New(a.pool)

	a.auth = authService.New(users, cfg.JWTSecret, refreshToken.New(a.redis), BlackListRepo.NewBlackListRepo(a.redis))
	a.references = referenceService.New(referenceRepo.New(a.pool), cfg.Cache.Size, cfg.Cache.TTL)
	a.history = historyService.New(historyRepo.New(a.pool), tx, clk)
	a.notifications = notificationService.New(notificationRepo.New(a.pool), users, a.references, mail, clk)
	a.files = fileService.New(fileService.Deps{
		Files:      files,
		Users:      users,
		References: a.references,
		History:    a.history,
		Notifier:   a.notifications,
		Storage:    store,
		Tx:         tx,
		Clock:      clk,
	}, cfg.MaxUploadMiB*1024*1024)

	a.runner = scheduler.New(ctx)
	sweep := schedulerService.NewExpirySweepTask(files, a.notifications, mail, clk, cfg.Notification.Interval)
	if err := a.runner.Register(cfg.Notification.ExpiryCron, sweep); err != nil {
		return err
	}
	cleanup := schedulerService.NewCleanupTask(a.notifications, cfg.Notification.RetentionDays)
	if err := a.runner.Register(cfg.Notification.CleanupCron, cleanup); err != nil {
		return err
	}
	return nil
}

func (a *app) Close() {
	if err := a.redis.Close(); err != nil {
		logger.GetLogger(context.Background()).Warn("failed to close redis", zap.Error(err))
	}
	a.pool.Close()
}
