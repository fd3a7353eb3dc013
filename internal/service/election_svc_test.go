package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/repository/memory"
)

// fakeClock lets tests advance simulated time past a window's expiry.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newElectionService() (*ElectionService, *fakeClock) {
	clock := newFakeClock()
	svc := NewElectionService(memory.NewCandidateStore(), memory.NewWindowStore(), nil, NewBus(), zerolog.Nop())
	svc.now = clock.Now
	return svc, clock
}

func TestAddCandidate(t *testing.T) {
	svc, _ := newElectionService()
	ctx := context.Background()

	tests := []struct {
		name      string
		club      string
		position  string
		candidate string
		wantErr   error
	}{
		{"valid candidate", "Chess Club", "President", "Alice", nil},
		{"second candidate same race", "Chess Club", "President", "Bob", nil},
		{"same name different race is fine", "Chess Club", "Secretary", "Alice", nil},
		{"duplicate name in race", "Chess Club", "President", "Alice", model.ErrValidation},
		{"empty name", "Chess Club", "President", "", model.ErrValidation},
		{"whitespace name", "Chess Club", "President", "   ", model.ErrValidation},
		{"empty club", "", "President", "Carol", model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := svc.AddCandidate(ctx, tt.club, tt.position, tt.candidate)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddCandidate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AddCandidate() error = %v", err)
			}
			if c.ID == "" {
				t.Error("expected generated candidate id")
			}
		})
	}
}

func TestRemoveCandidate_UnknownIDIsNoOp(t *testing.T) {
	svc, _ := newElectionService()

	if err := svc.RemoveCandidate(context.Background(), "no-such-id"); err != nil {
		t.Errorf("RemoveCandidate(unknown) = %v, want nil", err)
	}
}

func TestSetDuration(t *testing.T) {
	svc, _ := newElectionService()
	ctx := context.Background()

	if err := svc.SetDuration(ctx, "Chess Club", "President", 0); !errors.Is(err, model.ErrValidation) {
		t.Errorf("SetDuration(0) error = %v, want ValidationError", err)
	}
	if err := svc.SetDuration(ctx, "Chess Club", "President", -5); !errors.Is(err, model.ErrValidation) {
		t.Errorf("SetDuration(-5) error = %v, want ValidationError", err)
	}
	if err := svc.SetDuration(ctx, "Chess Club", "President", 60); err != nil {
		t.Fatalf("SetDuration(60) error = %v", err)
	}

	// Reconfiguring a configured race is allowed.
	if err := svc.SetDuration(ctx, "Chess Club", "President", 120); err != nil {
		t.Errorf("reconfigure error = %v", err)
	}

	// An open race cannot be reconfigured.
	if err := svc.Start(ctx, "Chess Club", "President"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := svc.SetDuration(ctx, "Chess Club", "President", 30); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("SetDuration(open race) error = %v, want InvalidStateError", err)
	}
}

func TestStartEnd_Lifecycle(t *testing.T) {
	svc, _ := newElectionService()
	ctx := context.Background()
	club, position := "Chess Club", "President"

	// Starting an unconfigured race is an illegal transition.
	if err := svc.Start(ctx, club, position); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("Start(unconfigured) error = %v, want InvalidStateError", err)
	}

	// Ending a non-open race is an error.
	if err := svc.End(ctx, club, position); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("End(unconfigured) error = %v, want InvalidStateError", err)
	}

	if err := svc.SetDuration(ctx, club, position, 60); err != nil {
		t.Fatalf("SetDuration() error = %v", err)
	}
	if err := svc.Start(ctx, club, position); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	open, err := svc.IsOpen(ctx, club, position)
	if err != nil {
		t.Fatalf("IsOpen() error = %v", err)
	}
	if !open {
		t.Error("race should be open after Start")
	}

	// Duplicate admin click: starting an open race is a no-op.
	if err := svc.Start(ctx, club, position); err != nil {
		t.Errorf("Start(open race) = %v, want nil (idempotent)", err)
	}

	if err := svc.End(ctx, club, position); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	open, _ = svc.IsOpen(ctx, club, position)
	if open {
		t.Error("race should be closed after End")
	}

	// Ending twice is an error.
	if err := svc.End(ctx, club, position); !errors.Is(err, model.ErrInvalidState) {
		t.Errorf("End(closed race) error = %v, want InvalidStateError", err)
	}

	// A closed race can be restarted.
	if err := svc.Start(ctx, club, position); err != nil {
		t.Errorf("Start(closed race) error = %v", err)
	}
	open, _ = svc.IsOpen(ctx, club, position)
	if !open {
		t.Error("restarted race should be open")
	}
}

func TestIsOpen_LazyExpiry(t *testing.T) {
	svc, clock := newElectionService()
	ctx := context.Background()
	club, position := "Chess Club", "President"

	if err := svc.SetDuration(ctx, club, position, 60); err != nil {
		t.Fatalf("SetDuration() error = %v", err)
	}
	if err := svc.Start(ctx, club, position); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	clock.Advance(59 * time.Second)
	if open, _ := svc.IsOpen(ctx, club, position); !open {
		t.Error("race should still be open at 59s of a 60s window")
	}

	clock.Advance(2 * time.Second) // 61s elapsed
	if open, _ := svc.IsOpen(ctx, club, position); open {
		t.Error("race should report closed after time expiry")
	}

	// Expiry is lazy: state stays open until an explicit End, which must
	// still succeed for audit clarity.
	st, err := svc.Status(ctx, club, position)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.State != model.RaceOpen {
		t.Errorf("state after expiry = %s, want %s (lazy expiry must not mutate)", st.State, model.RaceOpen)
	}
	if err := svc.End(ctx, club, position); err != nil {
		t.Errorf("End(expired race) error = %v, want nil", err)
	}
}

func TestIsOpen_UnconfiguredRace(t *testing.T) {
	svc, _ := newElectionService()

	open, err := svc.IsOpen(context.Background(), "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("IsOpen() error = %v", err)
	}
	if open {
		t.Error("race with no window must report closed")
	}
}

func TestSetResultsVisible(t *testing.T) {
	svc, _ := newElectionService()
	ctx := context.Background()
	club, position := "Chess Club", "President"

	// No window yet: nothing to toggle.
	if err := svc.SetResultsVisible(ctx, club, position, true); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("SetResultsVisible(unconfigured) error = %v, want NotFoundError", err)
	}

	if err := svc.SetDuration(ctx, club, position, 60); err != nil {
		t.Fatalf("SetDuration() error = %v", err)
	}
	if err := svc.SetResultsVisible(ctx, club, position, true); err != nil {
		t.Fatalf("SetResultsVisible() error = %v", err)
	}

	st, err := svc.Status(ctx, club, position)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.ResultsVisible {
		t.Error("resultsVisible should be true after toggle")
	}
	// Visibility is independent of open/closed.
	if st.Open {
		t.Error("toggling visibility must not open the race")
	}
}

func TestStatus_ThroughCacheLayer(t *testing.T) {
	clock := newFakeClock()
	cache := NewCacheService("", zerolog.Nop())
	svc := NewElectionService(memory.NewCandidateStore(), memory.NewWindowStore(), cache, NewBus(), zerolog.Nop())
	svc.now = clock.Now
	ctx := context.Background()
	club, position := "Chess Club", "President"

	if err := svc.SetDuration(ctx, club, position, 60); err != nil {
		t.Fatalf("SetDuration() error = %v", err)
	}
	if err := svc.Start(ctx, club, position); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Repeated reads go through the cache layer and stay consistent.
	for i := 0; i < 2; i++ {
		st, err := svc.Status(ctx, club, position)
		if err != nil {
			t.Fatalf("Status() read %d error = %v", i+1, err)
		}
		if !st.Open || st.State != model.RaceOpen {
			t.Fatalf("read %d: state = %s open = %v, want open race", i+1, st.State, st.Open)
		}
	}

	// Mutations invalidate and the next read reflects the new window state.
	if err := svc.End(ctx, club, position); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	st, err := svc.Status(ctx, club, position)
	if err != nil {
		t.Fatalf("Status() after End error = %v", err)
	}
	if st.Open || st.State != model.RaceClosed {
		t.Errorf("state after End = %s open = %v, want closed", st.State, st.Open)
	}
}

func TestStatus_Remaining(t *testing.T) {
	svc, clock := newElectionService()
	ctx := context.Background()
	club, position := "Chess Club", "President"

	if _, err := svc.AddCandidate(ctx, club, position, "Alice"); err != nil {
		t.Fatalf("AddCandidate() error = %v", err)
	}

	st, err := svc.Status(ctx, club, position)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if st.State != model.RaceUnconfigured {
		t.Errorf("state = %s, want unconfigured", st.State)
	}
	if len(st.Candidates) != 1 {
		t.Errorf("candidates = %d, want 1", len(st.Candidates))
	}

	if err := svc.SetDuration(ctx, club, position, 300); err != nil {
		t.Fatalf("SetDuration() error = %v", err)
	}
	if err := svc.Start(ctx, club, position); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	clock.Advance(100 * time.Second)

	st, err = svc.Status(ctx, club, position)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if !st.Open {
		t.Error("race should be open")
	}
	if st.RemainingSeconds != 200 {
		t.Errorf("remaining = %d, want 200", st.RemainingSeconds)
	}
}
