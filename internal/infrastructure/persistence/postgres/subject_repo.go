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

type subjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates the postgres-backed subject repository.
// Subjects are owned by the identity registry; read-only here.
func NewSubjectRepository(pool *pgxpool.Pool) repository.SubjectRepository {
	return &subjectRepository{pool: pool}
}

func (r *subjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `
		SELECT id, nid, first_name, COALESCE(middle_name, ''), last_name,
		       COALESCE(email, ''), COALESCE(phone, ''), COALESCE(birthdate, ''), COALESCE(gender, '')
		FROM subjects
		WHERE id = $1`

	var s models.Subject
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.NID,
		&s.FirstName,
		&s.MiddleName,
		&s.LastName,
		&s.Email,
		&s.Phone,
		&s.Birthdate,
		&s.Gender,
	)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find subject %s: %w", id, err)
	}
	return &s, nil
}
