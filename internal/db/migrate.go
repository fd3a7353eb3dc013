package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the engine's tables if they do not exist. Vote records are
// deliberately absent: the settlement backend is their single source of truth.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS candidates (
		id         UUID PRIMARY KEY,
		seq        BIGSERIAL,
		club       VARCHAR(64)  NOT NULL,
		position   VARCHAR(64)  NOT NULL,
		name       VARCHAR(80)  NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		UNIQUE (club, position, name)
	);
	CREATE INDEX IF NOT EXISTS idx_candidates_race_seq ON candidates (club, position, seq);

	CREATE TABLE IF NOT EXISTS election_windows (
		club             VARCHAR(64) NOT NULL,
		position         VARCHAR(64) NOT NULL,
		state            VARCHAR(16) NOT NULL CHECK (state IN ('configured', 'open', 'closed')),
		start_time       TIMESTAMPTZ,
		duration_seconds BIGINT      NOT NULL,
		results_visible  BOOLEAN     NOT NULL DEFAULT FALSE,
		PRIMARY KEY (club, position)
	);

	CREATE TABLE IF NOT EXISTS biometric_templates (
		voter_id    VARCHAR(128) PRIMARY KEY,
		descriptor  FLOAT8[]     NOT NULL,
		enrolled_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	);`

	_, err := pool.Exec(ctx, schema)
	return err
}
