// Package service contains the domain services of the authorization server
// and the infrastructure interfaces they depend on.
package service

import (
	"context"
	"time"

	"github.com/wangov/sso/internal/domain/models"
)

// GrantStore holds authorization grants keyed by their opaque code, with a
// TTL matching the grant expiry.
type GrantStore interface {
	// Put stores a grant under its code.
	Put(ctx context.Context, grant *models.AuthorizationGrant) error

	// Consume atomically removes and returns the grant for a code. It
	// returns nil when the code is unknown or already consumed; two
	// concurrent calls for the same code can never both succeed.
	Consume(ctx context.Context, code string) (*models.AuthorizationGrant, error)
}

// PendingAuthStore holds validated authorization requests while the user
// authenticates out of band.
type PendingAuthStore interface {
	// Save stores a pending authorization under its request id.
	Save(ctx context.Context, pending *models.PendingAuthorization) error

	// Consume atomically removes and returns the pending authorization for
	// a request id, or nil when unknown. One-shot use.
	Consume(ctx context.Context, requestID string) (*models.PendingAuthorization, error)
}

// TokenDenylist records revoked token identifiers. Entries expire with the
// token they shadow, so the set stays bounded.
type TokenDenylist interface {
	// Revoke adds a JTI to the denylist until the token's own expiry.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether a JTI has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// CryptoService signs and verifies tokens. Verification here covers
// signature and registered-claim validity only; type-marker and denylist
// checks belong to TokenService.
type CryptoService interface {
	// Sign produces the signed wire form of a claims set.
	Sign(ctx context.Context, claims *models.Claims) (string, error)

	// Verify parses a signed token and validates signature and time claims.
	Verify(ctx context.Context, tokenString string) (*models.Claims, error)
}

// RateLimitService throttles requests per key.
type RateLimitService interface {
	// Allow reports whether a request under the key is within the limit,
	// along with the remaining budget and the reset time.
	Allow(ctx context.Context, key string) (allowed bool, remaining int64, resetAt time.Time, err error)
}

// AuditService records security-relevant events. Implementations must be
// fire-and-forget: errors are logged, never propagated to the caller.
type AuditService interface {
	Record(ctx context.Context, event *models.AuditEvent)
}
