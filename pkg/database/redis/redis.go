package redis

import (
	"context"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Host     string `env:"REDIS_HOST" env-default:"localhost"`
	Port     string `env:"REDIS_PORT" env-default:"6380"`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	Db       int    `env:"REDIS_DB" env-default:"0"`
}

func New(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Db,
	})
}

// Connect builds the client and fails fast when the server does not answer PING.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := New(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cannot connect to redis at %s: %w", client.Options().Addr, err)
	}
	return client, nil
}
