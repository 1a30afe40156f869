// Package revocation implements the token revocation list consulted on every
// authenticated request. Logout writes the token's jti here for the remainder
// of its lifetime.
package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key prefix for revoked tokens.
const revokedTokenKeyPrefix = "trl:jti:"

// RedisList is a Redis-backed revocation list. Use this in production so that
// multiple instances share revocation state.
type RedisList struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisList {
	return &RedisList{client: client}
}

// Revoke marks a token ID as revoked for ttl. The key existence is the
// marker; once it expires the token has expired anyway.
func (l *RedisList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a token ID is on the list. A missing key means
// not revoked (or already expired).
func (l *RedisList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
