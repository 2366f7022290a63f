package service

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/repository"
	"github.com/wangov/sso/pkg/errors"
	"github.com/wangov/sso/pkg/logger"
)

// ClientRegistry validates client credentials and redirect URIs against the
// organization registry.
type ClientRegistry interface {
	// ValidateClient checks existence and active status, and when a secret
	// is supplied, compares it against the stored hash. Every failure mode
	// collapses to the same invalid_client error so callers cannot probe
	// which part failed.
	ValidateClient(ctx context.Context, clientID, clientSecret string) (*models.Client, error)

	// Authenticate is ValidateClient with the secret required.
	Authenticate(ctx context.Context, clientID, clientSecret string) (*models.Client, error)

	// ValidateRedirectURI checks the exact-match rule against the client's
	// registered callback URL.
	ValidateRedirectURI(client *models.Client, uri string) error
}

// clientCacheTTL bounds staleness of cached registry lookups. The registry
// is read-only here, so a short TTL only delays suspension taking effect.
const clientCacheTTL = 30 * time.Second

type clientRegistry struct {
	repo  repository.ClientRepository
	cache *gocache.Cache
	log   logger.Logger
}

// NewClientRegistry creates a ClientRegistry backed by the given repository
// with a short-lived in-process cache.
func NewClientRegistry(repo repository.ClientRepository, log logger.Logger) ClientRegistry {
	return &clientRegistry{
		repo:  repo,
		cache: gocache.New(clientCacheTTL, 2*clientCacheTTL),
		log:   log.WithComponent("client_registry"),
	}
}

func (r *clientRegistry) ValidateClient(ctx context.Context, clientID, clientSecret string) (*models.Client, error) {
	if clientID == "" {
		return nil, errors.ErrInvalidClient("missing client_id")
	}

	client, err := r.lookup(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.IsActive() {
		return nil, errors.ErrInvalidClient("unknown or inactive client").
			WithMetadata("client_id", clientID)
	}

	if clientSecret != "" {
		if bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(clientSecret)) != nil {
			return nil, errors.ErrInvalidClient("client secret mismatch").
				WithMetadata("client_id", clientID)
		}
	}

	return client, nil
}

func (r *clientRegistry) Authenticate(ctx context.Context, clientID, clientSecret string) (*models.Client, error) {
	if clientSecret == "" {
		return nil, errors.ErrInvalidClient("missing client_secret").
			WithMetadata("client_id", clientID)
	}
	return r.ValidateClient(ctx, clientID, clientSecret)
}

func (r *clientRegistry) ValidateRedirectURI(client *models.Client, uri string) error {
	if !client.MatchesRedirectURI(uri) {
		return errors.ErrInvalidRedirectURI("redirect_uri does not match registration").
			WithMetadata("client_id", client.ID)
	}
	return nil
}

func (r *clientRegistry) lookup(ctx context.Context, clientID string) (*models.Client, error) {
	if cached, ok := r.cache.Get(clientID); ok {
		return cached.(*models.Client), nil
	}

	client, err := r.repo.FindByClientID(ctx, clientID)
	if err != nil {
		r.log.Error(ctx, "client registry lookup failed", err, logger.String("client_id", clientID))
		return nil, errors.ErrServerError("client registry unavailable").WithCause(err)
	}
	if client != nil {
		r.cache.Set(clientID, client, gocache.DefaultExpiration)
	}
	return client, nil
}
