package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubvote/clubvote-go/internal/model"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

type CandidateRepo struct {
	pool *pgxpool.Pool
}

func NewCandidateRepo(pool *pgxpool.Pool) *CandidateRepo {
	return &CandidateRepo{pool: pool}
}

// Insert stores a new candidate. A duplicate name within the same race hits
// the (club, position, name) unique index and surfaces as a ValidationError.
func (r *CandidateRepo) Insert(ctx context.Context, c model.Candidate) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO candidates (id, club, position, name, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Club, c.Position, c.Name, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.Validationf("candidate %q already exists for %s/%s", c.Name, c.Club, c.Position)
		}
		return err
	}
	return nil
}

// Delete removes a candidate. Deleting an absent id is a no-op.
func (r *CandidateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	return err
}

func (r *CandidateRepo) GetByID(ctx context.Context, id string) (model.Candidate, error) {
	var c model.Candidate
	err := r.pool.QueryRow(ctx, `
		SELECT id, club, position, name, created_at
		FROM candidates WHERE id = $1`, id).
		Scan(&c.ID, &c.Club, &c.Position, &c.Name, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Candidate{}, model.NotFoundf("candidate %s", id)
	}
	return c, err
}

// ListByRace returns a race's candidates in registration order. The seq
// sequence is strictly monotonic, so the order (and the tally tie-break
// built on it) stays deterministic even when created_at timestamps collide.
func (r *CandidateRepo) ListByRace(ctx context.Context, club, position string) ([]model.Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, club, position, name, created_at
		FROM candidates
		WHERE club = $1 AND position = $2
		ORDER BY seq`, club, position)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Club, &c.Position, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CandidateRepo) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`).Scan(&n)
	return n, err
}
