package BlackListRepo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type BlackListRepo struct {
	Client *redis.Client
	now    func() time.Time
}

func NewBlackListRepo(client *redis.Client) *BlackListRepo {
	return &BlackListRepo{
		Client: client,
		now:    time.Now,
	}
}

// Keys hold a digest of the token, never the token itself.
func (r *BlackListRepo) buildKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "cfs:blacklist:" + hex.EncodeToString(sum[:])
}

// AddToken keeps the token blacklisted until it would have expired anyway.
func (r *BlackListRepo) AddToken(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, r.buildKey(token), "1", ttl).Err()
}

func (r *BlackListRepo) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	err := r.Client.Get(ctx, r.buildKey(token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
