package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubvote/clubvote-go/internal/model"
)

type TemplateRepo struct {
	pool *pgxpool.Pool
}

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

func (r *TemplateRepo) Get(ctx context.Context, voterID string) (model.BiometricTemplate, error) {
	var tpl model.BiometricTemplate
	err := r.pool.QueryRow(ctx, `
		SELECT voter_id, descriptor, enrolled_at
		FROM biometric_templates WHERE voter_id = $1`, voterID).
		Scan(&tpl.VoterID, &tpl.Descriptor, &tpl.EnrolledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.BiometricTemplate{}, model.NotFoundf("no template for voter")
	}
	return tpl, err
}

func (r *TemplateRepo) List(ctx context.Context) ([]model.BiometricTemplate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT voter_id, descriptor, enrolled_at
		FROM biometric_templates ORDER BY enrolled_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BiometricTemplate
	for rows.Next() {
		var tpl model.BiometricTemplate
		if err := rows.Scan(&tpl.VoterID, &tpl.Descriptor, &tpl.EnrolledAt); err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

// Insert stores a first-time template. The voter_id primary key guarantees
// at most one template per identity even if two enrollments race past the
// service-level lock.
func (r *TemplateRepo) Insert(ctx context.Context, tpl model.BiometricTemplate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO biometric_templates (voter_id, descriptor, enrolled_at)
		VALUES ($1, $2, $3)`,
		tpl.VoterID, tpl.Descriptor, tpl.EnrolledAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Validationf("voter already enrolled")
		}
		return err
	}
	return nil
}
