// Package repository defines the persistence interfaces consumed by the
// domain and application layers. Implementations live under
// internal/infrastructure/persistence.
package repository

import (
	"context"
	"time"

	"github.com/wangov/sso/internal/domain/models"
)

// ClientRepository reads registered relying parties from the organization
// registry. The registry is read-only from this subsystem's perspective;
// clients are mutated elsewhere.
type ClientRepository interface {
	// FindByClientID returns the client with the given client_id, or nil
	// when no such client exists.
	FindByClientID(ctx context.Context, clientID string) (*models.Client, error)
}

// SubjectRepository reads end users from the identity registry. It supplies
// profile claims for ID tokens and the userinfo endpoint.
type SubjectRepository interface {
	// FindByID returns the subject with the given id, or nil when no such
	// subject exists.
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// ServiceAccessRepository persists subject-to-client access records.
type ServiceAccessRepository interface {
	// Save inserts a new access record.
	Save(ctx context.Context, access *models.ServiceAccess) error

	// FindBySubject returns all access records for a subject, newest first.
	FindBySubject(ctx context.Context, subjectID string) ([]*models.ServiceAccess, error)

	// Revoke marks an access record revoked.
	Revoke(ctx context.Context, id string) error

	// DeleteExpiredBefore removes records whose expiry predates the cutoff.
	// Store-size hygiene; correctness never depends on it.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditRepository appends audit events.
type AuditRepository interface {
	// Record appends an audit event.
	Record(ctx context.Context, event *models.AuditEvent) error
}
