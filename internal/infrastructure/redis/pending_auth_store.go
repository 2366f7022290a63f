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

const pendingAuthKeyPrefix = "sso:pending:"

type pendingAuthStore struct {
	client *redis.Client
}

// NewPendingAuthStore creates the Redis-backed pending authorization store.
// Requests are keyed by their opaque request id and consumed with GETDEL so
// a completed login cannot replay the same pending request.
func NewPendingAuthStore(client *redis.Client) service.PendingAuthStore {
	return &pendingAuthStore{client: client}
}

func (s *pendingAuthStore) Save(ctx context.Context, pending *models.PendingAuthorization) error {
	data, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending authorization: %w", err)
	}

	ttl := time.Until(pending.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("pending authorization already expired")
	}

	if err := s.client.Set(ctx, pendingAuthKeyPrefix+pending.RequestID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store pending authorization: %w", err)
	}
	return nil
}

func (s *pendingAuthStore) Consume(ctx context.Context, requestID string) (*models.PendingAuthorization, error) {
	data, err := s.client.GetDel(ctx, pendingAuthKeyPrefix+requestID).Result()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume pending authorization: %w", err)
	}

	var pending models.PendingAuthorization
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending authorization: %w", err)
	}
	return &pending, nil
}
