package postgres

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wangov/sso/internal/domain/models"
	"github.com/wangov/sso/internal/domain/repository"
)

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates the postgres-backed client repository. The
// clients table is owned by the organization registry; this subsystem only
// reads it.
func NewClientRepository(pool *pgxpool.Pool) repository.ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) FindByClientID(ctx context.Context, clientID string) (*models.Client, error) {
	const query = `
		SELECT id, organization_id, name, secret_hash, redirect_uri, allowed_scopes, status, created_at, updated_at
		FROM clients
		WHERE id = $1`

	var c models.Client
	err := r.pool.QueryRow(ctx, query, clientID).Scan(
		&c.ID,
		&c.OrganizationID,
		&c.Name,
		&c.SecretHash,
		&c.RedirectURI,
		&c.AllowedScopes,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find client %s: %w", clientID, err)
	}
	return &c, nil
}
