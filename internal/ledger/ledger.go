// Package ledger defines the boundary to the settlement backend, the
// durable, authoritative store for cast votes and tallies. The engine never
// records a vote locally; a vote exists iff the ledger accepted it.
package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by ElectionWindow when the ledger has no
// window for the race.
var ErrNotConfigured = errors.New("election not configured on ledger")

// ErrDuplicate is returned by SubmitVote when the idempotency key was
// already settled.
var ErrDuplicate = errors.New("vote already settled")

// VoteSubmission is one logical vote. IdempotencyKey is derived from
// (voter, club, position) so the backend rejects duplicate submissions of
// the same vote.
type VoteSubmission struct {
	IdempotencyKey string    `json:"idempotencyKey"`
	VoterID        string    `json:"voterId"`
	Club           string    `json:"club"`
	Position       string    `json:"position"`
	CandidateID    string    `json:"candidateId"`
	Timestamp      time.Time `json:"timestamp"`
}

// Receipt acknowledges a settled vote.
type Receipt struct {
	ID        string    `json:"id"`
	SettledAt time.Time `json:"settledAt"`
}

// WindowInfo is the ledger's view of a race window.
type WindowInfo struct {
	StartTime time.Time     `json:"startTime"`
	Duration  time.Duration `json:"duration"`
	Active    bool          `json:"active"`
}

// Ledger is the settlement backend contract. All reads are safe to retry;
// SubmitVote is not retried by callers; the backend deduplicates on the
// idempotency key instead.
type Ledger interface {
	SubmitVote(ctx context.Context, sub VoteSubmission) (Receipt, error)
	HasVoted(ctx context.Context, voterID, club, position string) (bool, error)
	VoteCount(ctx context.Context, club, position, candidateID string) (int64, error)
	ElectionWindow(ctx context.Context, club, position string) (WindowInfo, error)
}
