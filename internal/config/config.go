package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"commercial-file-service/internal/mailer"
	"commercial-file-service/internal/storage"
	"commercial-file-service/pkg/database/postgres"
	"commercial-file-service/pkg/database/redis"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultPath = "config/local.env"

type NotificationConfig struct {
	Email         string `env:"NOTIFICATION_EMAIL" env-default:"CommercialFileManagement@netone.co.zw"`
	Interval      int    `env:"NOTIFICATION_INTERVAL" env-default:"7"`
	ExpiryCron    string `env:"NOTIFICATION_CRON_EXPIRING_SOON" env-default:"0 0 8 * * *"`
	CleanupCron   string `env:"NOTIFICATION_CRON_CLEANUP" env-default:"0 0 2 * * *"`
	RetentionDays int    `env:"NOTIFICATION_RETENTION_DAYS" env-default:"30"`
}

type CacheConfig struct {
	Size int           `env:"REFERENCE_CACHE_SIZE" env-default:"256"`
	TTL  time.Duration `env:"REFERENCE_CACHE_TTL" env-default:"10m"`
}

type Config struct {
	HTTPPort     string `env:"HTTP_PORT" env-default:"8080"`
	GRPCPort     string `env:"GRPC_PORT" env-default:"50051"`
	JWTSecret    string `env:"JWT_TOKEN" env-required:"true"`
	TimeZone     string `env:"TIME_ZONE" env-default:"Africa/Harare"`
	MaxUploadMiB int64  `env:"MAX_UPLOAD_MIB" env-default:"10"`

	Postgres     postgres.Config
	Redis        redis.Config
	Storage      storage.Config
	SMTP         mailer.Config
	Notification NotificationConfig
	Cache        CacheConfig
}

// New reads config/local.env when it exists and falls back to the process environment.
func New() (*Config, error) {
	var cfg Config
	if _, err := os.Stat(defaultPath); err == nil {
		if err := cleanenv.ReadConfig(defaultPath, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config %s: %w", defaultPath, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config from environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) validate() error {
	if c.Notification.Interval < 0 {
		return errors.New("NOTIFICATION_INTERVAL must not be negative")
	}
	if c.Notification.RetentionDays <= 0 {
		return errors.New("NOTIFICATION_RETENTION_DAYS must be positive")
	}
	if c.MaxUploadMiB <= 0 {
		return errors.New("MAX_UPLOAD_MIB must be positive")
	}
	switch c.Storage.Type {
	case storage.TypeMinIO, storage.TypeS3:
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.Storage.Type)
	}
	return nil
}
