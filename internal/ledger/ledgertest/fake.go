// Package ledgertest provides an in-memory Ledger for tests.
package ledgertest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clubvote/clubvote-go/internal/ledger"
)

// Fake is a settlement backend double with idempotency-key deduplication
// and optional failure injection.
type Fake struct {
	mu       sync.Mutex
	settled  map[string]ledger.VoteSubmission // idempotency key -> submission
	counts   map[string]int64                 // club|position|candidateId -> votes
	windows  map[string]ledger.WindowInfo     // club|position -> window
	FailNext error                            // returned once by the next SubmitVote
	Delay    time.Duration                    // artificial latency per call
}

func New() *Fake {
	return &Fake{
		settled: make(map[string]ledger.VoteSubmission),
		counts:  make(map[string]int64),
		windows: make(map[string]ledger.WindowInfo),
	}
}

func (f *Fake) SubmitVote(ctx context.Context, sub ledger.VoteSubmission) (ledger.Receipt, error) {
	if err := f.wait(ctx); err != nil {
		return ledger.Receipt{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailNext != nil {
		err := f.FailNext
		f.FailNext = nil
		return ledger.Receipt{}, err
	}
	if _, ok := f.settled[sub.IdempotencyKey]; ok {
		return ledger.Receipt{}, ledger.ErrDuplicate
	}

	f.settled[sub.IdempotencyKey] = sub
	f.counts[raceCandidateKey(sub.Club, sub.Position, sub.CandidateID)]++
	return ledger.Receipt{ID: uuid.New().String(), SettledAt: time.Now()}, nil
}

func (f *Fake) HasVoted(ctx context.Context, voterID, club, position string) (bool, error) {
	if err := f.wait(ctx); err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.settled {
		if sub.VoterID == voterID && sub.Club == club && sub.Position == position {
			return true, nil
		}
	}
	return false, nil
}

func (f *Fake) VoteCount(ctx context.Context, club, position, candidateID string) (int64, error) {
	if err := f.wait(ctx); err != nil {
		return 0, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[raceCandidateKey(club, position, candidateID)], nil
}

func (f *Fake) ElectionWindow(ctx context.Context, club, position string) (ledger.WindowInfo, error) {
	if err := f.wait(ctx); err != nil {
		return ledger.WindowInfo{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[club+"|"+position]
	if !ok {
		return ledger.WindowInfo{}, ledger.ErrNotConfigured
	}
	return w, nil
}

// SetWindow seeds the ledger's view of a race window.
func (f *Fake) SetWindow(club, position string, w ledger.WindowInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[club+"|"+position] = w
}

// SettledCount reports how many votes have settled in total.
func (f *Fake) SettledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.settled)
}

func (f *Fake) wait(ctx context.Context) error {
	if f.Delay == 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(f.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func raceCandidateKey(club, position, candidateID string) string {
	return club + "|" + position + "|" + candidateID
}
