package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wangov/sso/internal/domain/service"
)

const denylistKeyPrefix = "sso:denylist:"

type tokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist creates the Redis-backed revocation denylist. Entries
// carry a TTL equal to the revoked token's remaining lifetime, so the set
// never outgrows the tokens it shadows.
func NewTokenDenylist(client *redis.Client) service.TokenDenylist {
	return &tokenDenylist{client: client}
}

func (d *tokenDenylist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; nothing to deny.
		return nil
	}
	return d.client.Set(ctx, denylistKeyPrefix+jti, "1", ttl).Err()
}

func (d *tokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
