// Package redis provides Redis-backed implementations of the domain store
// interfaces: the authorization grant store, the pending authorization
// store, and the token revocation denylist.
package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/service"
)

const grantKeyPrefix = "sso:grant:"

type grantStore struct {
	client *redis.Client
}

// NewGrantStore creates the Redis-backed authorization grant store. Grants
// are stored under their opaque code with a TTL matching the grant expiry;
// consumption is a single GETDEL, so two concurrent redemption attempts can
// never both succeed.
func NewGrantStore(client *redis.Client) service.GrantStore {
	return &grantStore{client: client}
}

func (s *grantStore) Put(ctx context.Context, grant *models.AuthorizationGrant) error {
	data, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("failed to marshal grant: %w", err)
	}

	ttl := time.Until(grant.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("grant already expired")
	}

	if err := s.client.Set(ctx, grantKeyPrefix+grant.Code, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store grant: %w", err)
	}
	return nil
}

func (s *grantStore) Consume(ctx context.Context, code string) (*models.AuthorizationGrant, error) {
	data, err := s.client.GetDel(ctx, grantKeyPrefix+code).Result()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume grant: %w", err)
	}

	var grant models.AuthorizationGrant
	if err := json.Unmarshal([]byte(data), &grant); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grant: %w", err)
	}
	return &grant, nil
}
