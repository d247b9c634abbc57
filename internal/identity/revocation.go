package identity

import (
	"context"
	"fmt"
	"time"

	platformredis "veriflow/internal/platform/redis"
)

// RevocationChecker answers whether a credential has been revoked since it
// was issued. The auth middleware treats checker errors as authentication
// failures (fail-closed), never as a pass.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationStore tracks revoked token IDs in Redis with a TTL matching
// the token lifetime, so entries expire once the token would anyway.
type RedisRevocationStore struct {
	client *platformredis.Client
}

func NewRedisRevocationStore(client *platformredis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func revocationKey(jti string) string {
	return "veriflow:revoked:" + jti
}

// Revoke marks a token ID revoked until ttl elapses.
func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, revocationKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token %s: %w", jti, err)
	}
	return nil
}

// IsTokenRevoked reports whether the token ID is in the revocation set.
func (s *RedisRevocationStore) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revocationKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation for %s: %w", jti, err)
	}
	return n > 0, nil
}
