package refreshToken

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenRepo keeps one refresh token per user. Only a SHA-256 digest
// of the token is stored.
type RefreshTokenRepo struct {
	Client *redis.Client
}

func New(client *redis.Client) *RefreshTokenRepo {
	return &RefreshTokenRepo{Client: client}
}

func (r *RefreshTokenRepo) buildKey(userID uint32) string {
	return fmt.Sprintf("cfs:refresh:%d", userID)
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// SaveToken replaces any token the user already had.
func (r *RefreshTokenRepo) SaveToken(ctx context.Context, userID uint32, token string, ttl time.Duration) error {
	return r.Client.Set(ctx, r.buildKey(userID), digest(token), ttl).Err()
}

func (r *RefreshTokenRepo) DeleteToken(ctx context.Context, userID uint32) error {
	return r.Client.Del(ctx, r.buildKey(userID)).Err()
}

// ValidateToken treats a missing key as an invalid token rather than an error.
func (r *RefreshTokenRepo) ValidateToken(ctx context.Context, userID uint32, token string) (bool, error) {
	stored, err := r.Client.Get(ctx, r.buildKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(digest(token))) == 1, nil
}
