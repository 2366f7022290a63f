package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/repository"
)

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates the postgres-backed audit log repository.
// Append-only: there is no update or delete path.
func NewAuditRepository(pool *pgxpool.Pool) repository.AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Record(ctx context.Context, event *models.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal audit metadata: %w", err)
		}
	}

	const query = `
		INSERT INTO audit_log (id, action, entity_type, entity_id, actor_id, ip_address, user_agent, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		string(event.Action),
		event.EntityType,
		event.EntityID,
		event.ActorID,
		event.IPAddress,
		event.UserAgent,
		metadata,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit event: %w", err)
	}
	return nil
}
