package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/repository"
)

type serviceAccessRepository struct {
	pool *pgxpool.Pool
}

// NewServiceAccessRepository creates the postgres-backed service access
// repository.
func NewServiceAccessRepository(pool *pgxpool.Pool) repository.ServiceAccessRepository {
	return &serviceAccessRepository{pool: pool}
}

func (r *serviceAccessRepository) Save(ctx context.Context, access *models.ServiceAccess) error {
	if access.ID == "" {
		access.ID = uuid.NewString()
	}
	const query = `
		INSERT INTO service_access (id, subject_id, client_id, organization_id, scope, granted_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		access.ID,
		access.SubjectID,
		access.ClientID,
		access.OrganizationID,
		access.Scope,
		access.GrantedAt,
		access.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save service access: %w", err)
	}
	return nil
}

func (r *serviceAccessRepository) FindBySubject(ctx context.Context, subjectID string) ([]*models.ServiceAccess, error) {
	const query = `
		SELECT id, subject_id, client_id, COALESCE(organization_id, ''), scope, granted_at, expires_at, revoked_at
		FROM service_access
		WHERE subject_id = $1
		ORDER BY granted_at DESC`

	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list service access for %s: %w", subjectID, err)
	}
	defer rows.Close()

	var records []*models.ServiceAccess
	for rows.Next() {
		var a models.ServiceAccess
		if err := rows.Scan(&a.ID, &a.SubjectID, &a.ClientID, &a.OrganizationID, &a.Scope, &a.GrantedAt, &a.ExpiresAt, &a.RevokedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service access row: %w", err)
		}
		records = append(records, &a)
	}
	return records, rows.Err()
}

func (r *serviceAccessRepository) Revoke(ctx context.Context, id string) error {
	const query = `UPDATE service_access SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to revoke service access %s: %w", id, err)
	}
	return nil
}

func (r *serviceAccessRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM service_access WHERE expires_at < $1`
	tag, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired service access: %w", err)
	}
	return tag.RowsAffected(), nil
}
