package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clubvote/clubvote-go/internal/model"
)

type WindowRepo struct {
	pool *pgxpool.Pool
}

func NewWindowRepo(pool *pgxpool.Pool) *WindowRepo {
	return &WindowRepo{pool: pool}
}

func (r *WindowRepo) Get(ctx context.Context, club, position string) (model.ElectionWindow, error) {
	var w model.ElectionWindow
	var durationSeconds int64
	var startTime *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT club, position, state, start_time, duration_seconds, results_visible
		FROM election_windows WHERE club = $1 AND position = $2`, club, position).
		Scan(&w.Club, &w.Position, &w.State, &startTime, &durationSeconds, &w.ResultsVisible)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ElectionWindow{}, model.NotFoundf("no election window for %s/%s", club, position)
	}
	if err != nil {
		return model.ElectionWindow{}, err
	}
	if startTime != nil {
		w.StartTime = *startTime
	}
	w.Duration = time.Duration(durationSeconds) * time.Second
	return w, nil
}

// Save upserts a window row. Transition serialization is the caller's
// responsibility (per-race locks in the election service).
func (r *WindowRepo) Save(ctx context.Context, w model.ElectionWindow) error {
	var startTime *time.Time
	if !w.StartTime.IsZero() {
		startTime = &w.StartTime
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO election_windows (club, position, state, start_time, duration_seconds, results_visible)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (club, position) DO UPDATE
		SET state = EXCLUDED.state,
		    start_time = EXCLUDED.start_time,
		    duration_seconds = EXCLUDED.duration_seconds,
		    results_visible = EXCLUDED.results_visible`,
		w.Club, w.Position, w.State, startTime, int64(w.Duration/time.Second), w.ResultsVisible)
	return err
}

func (r *WindowRepo) List(ctx context.Context) ([]model.ElectionWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT club, position, state, start_time, duration_seconds, results_visible
		FROM election_windows ORDER BY club, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ElectionWindow
	for rows.Next() {
		var w model.ElectionWindow
		var durationSeconds int64
		var startTime *time.Time
		if err := rows.Scan(&w.Club, &w.Position, &w.State, &startTime, &durationSeconds, &w.ResultsVisible); err != nil {
			return nil, err
		}
		if startTime != nil {
			w.StartTime = *startTime
		}
		w.Duration = time.Duration(durationSeconds) * time.Second
		out = append(out, w)
	}
	return out, rows.Err()
}
