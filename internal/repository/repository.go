package repository

import (
	"context"

	"github.com/clubvote/clubvote-go/internal/model"
)

// CandidateStore owns candidate rows. Insertion order is preserved per race
// and is the tie-break order for tallies.
type CandidateStore interface {
	Insert(ctx context.Context, c model.Candidate) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (model.Candidate, error)
	ListByRace(ctx context.Context, club, position string) ([]model.Candidate, error)
	CountAll(ctx context.Context) (int64, error)
}

// WindowStore owns one election window row per (club, position). Get returns
// model.ErrNotFound for an unconfigured race. Save upserts; callers serialize
// writes per race key.
type WindowStore interface {
	Get(ctx context.Context, club, position string) (model.ElectionWindow, error)
	Save(ctx context.Context, w model.ElectionWindow) error
	List(ctx context.Context) ([]model.ElectionWindow, error)
}

// TemplateStore owns enrolled biometric templates, at most one per voter.
// Insert fails if the voter already has a template.
type TemplateStore interface {
	Get(ctx context.Context, voterID string) (model.BiometricTemplate, error)
	List(ctx context.Context) ([]model.BiometricTemplate, error)
	Insert(ctx context.Context, tpl model.BiometricTemplate) error
}
