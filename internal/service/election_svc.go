package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/repository"
)

// ElectionService owns candidates and election windows and enforces the
// per-race lifecycle: unconfigured → configured → open → closed, with
// closed races re-configurable and re-startable.
type ElectionService struct {
	candidates repository.CandidateStore
	windows    repository.WindowStore
	cache      *CacheService
	bus        *Bus
	locks      *keyedMutex
	now        func() time.Time
	log        zerolog.Logger
}

func NewElectionService(candidates repository.CandidateStore, windows repository.WindowStore, cache *CacheService, bus *Bus, log zerolog.Logger) *ElectionService {
	return &ElectionService{
		candidates: candidates,
		windows:    windows,
		cache:      cache,
		bus:        bus,
		locks:      newKeyedMutex(),
		now:        time.Now,
		log:        log.With().Str("component", "elections").Logger(),
	}
}

// AddCandidate registers a candidate in a race. Allowed in any window state.
func (s *ElectionService) AddCandidate(ctx context.Context, club, position, name string) (model.Candidate, error) {
	club, position = strings.TrimSpace(club), strings.TrimSpace(position)
	name = strings.TrimSpace(name)
	if club == "" || position == "" {
		return model.Candidate{}, model.Validationf("club and position are required")
	}
	if name == "" {
		return model.Candidate{}, model.Validationf("candidate name is required")
	}

	c := model.Candidate{
		ID:        uuid.New().String(),
		Club:      club,
		Position:  position,
		Name:      name,
		CreatedAt: s.now(),
	}
	if err := s.candidates.Insert(ctx, c); err != nil {
		return model.Candidate{}, err
	}

	s.log.Info().Str("club", club).Str("position", position).Str("candidate", name).Msg("candidate added")
	return c, nil
}

// RemoveCandidate deletes a candidate. Removing an unknown id is a no-op.
func (s *ElectionService) RemoveCandidate(ctx context.Context, id string) error {
	return s.candidates.Delete(ctx, id)
}

// Candidates lists a race's candidates in insertion order.
func (s *ElectionService) Candidates(ctx context.Context, club, position string) ([]model.Candidate, error) {
	return s.candidates.ListByRace(ctx, club, position)
}

// SetDuration configures (or re-configures) a race's voting window length.
// Valid from unconfigured, configured and closed states; an open race must
// be ended first.
func (s *ElectionService) SetDuration(ctx context.Context, club, position string, seconds int64) error {
	if seconds <= 0 {
		return model.Validationf("duration must be positive, got %d", seconds)
	}

	key := model.RaceKey{Club: club, Position: position}
	unlock := s.locks.Lock(key.String())
	defer unlock()

	w, err := s.windows.Get(ctx, club, position)
	switch {
	case errors.Is(err, model.ErrNotFound):
		w = model.ElectionWindow{Club: club, Position: position}
	case err != nil:
		return err
	}

	if w.State == model.RaceOpen {
		return fmt.Errorf("%w: cannot reconfigure an open race", model.ErrInvalidState)
	}

	w.State = model.RaceConfigured
	w.Duration = time.Duration(seconds) * time.Second
	w.StartTime = time.Time{}
	if err := s.windows.Save(ctx, w); err != nil {
		return err
	}

	s.publish(ctx, key)
	s.log.Info().Str("race", key.String()).Int64("seconds", seconds).Msg("window configured")
	return nil
}

// Start opens a configured or closed race. Starting an already-open race is
// a no-op so duplicate admin clicks are harmless.
func (s *ElectionService) Start(ctx context.Context, club, position string) error {
	key := model.RaceKey{Club: club, Position: position}
	unlock := s.locks.Lock(key.String())
	defer unlock()

	w, err := s.windows.Get(ctx, club, position)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: race %s has no configured duration", model.ErrInvalidState, key)
	}
	if err != nil {
		return err
	}

	switch w.State {
	case model.RaceOpen:
		return nil
	case model.RaceConfigured, model.RaceClosed:
	default:
		return fmt.Errorf("%w: cannot start race in state %s", model.ErrInvalidState, w.State)
	}

	w.State = model.RaceOpen
	w.StartTime = s.now()
	if err := s.windows.Save(ctx, w); err != nil {
		return err
	}

	s.publish(ctx, key)
	s.log.Info().Str("race", key.String()).Time("start", w.StartTime).Dur("duration", w.Duration).Msg("election started")
	return nil
}

// End closes an open race. Ending a race in any other state is an error.
func (s *ElectionService) End(ctx context.Context, club, position string) error {
	key := model.RaceKey{Club: club, Position: position}
	unlock := s.locks.Lock(key.String())
	defer unlock()

	w, err := s.windows.Get(ctx, club, position)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: race %s is not open", model.ErrInvalidState, key)
	}
	if err != nil {
		return err
	}
	if w.State != model.RaceOpen {
		return fmt.Errorf("%w: cannot end race in state %s", model.ErrInvalidState, w.State)
	}

	w.State = model.RaceClosed
	if err := s.windows.Save(ctx, w); err != nil {
		return err
	}

	s.publish(ctx, key)
	s.log.Info().Str("race", key.String()).Msg("election ended")
	return nil
}

// SetResultsVisible toggles tally disclosure for a race. Independent of the
// open/closed state.
func (s *ElectionService) SetResultsVisible(ctx context.Context, club, position string, visible bool) error {
	key := model.RaceKey{Club: club, Position: position}
	unlock := s.locks.Lock(key.String())
	defer unlock()

	w, err := s.windows.Get(ctx, club, position)
	if err != nil {
		return err
	}

	w.ResultsVisible = visible
	if err := s.windows.Save(ctx, w); err != nil {
		return err
	}

	s.publish(ctx, key)
	s.log.Info().Str("race", key.String()).Bool("visible", visible).Msg("results visibility changed")
	return nil
}

// IsOpen reports whether the race admits votes right now: the window must be
// explicitly open AND inside its time bound. A time-expired window reports
// closed without being mutated (lazy expiry); an explicit End is still
// required to retire it.
func (s *ElectionService) IsOpen(ctx context.Context, club, position string) (bool, error) {
	w, err := s.windows.Get(ctx, club, position)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.windowOpen(w), nil
}

// Status returns the voter-facing view of a race, including its candidates.
// Served cache-aside with a short TTL; RemainingSeconds may lag by up to
// StatusCacheTTL.
func (s *ElectionService) Status(ctx context.Context, club, position string) (*model.ElectionStatus, error) {
	if s.cache != nil {
		if data, err := s.cache.GetStatus(ctx, club, position); err == nil && data != nil {
			var st model.ElectionStatus
			if json.Unmarshal(data, &st) == nil {
				return &st, nil
			}
		}
	}

	st, err := s.computeStatus(ctx, club, position)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetStatus(ctx, club, position, st); err != nil {
			s.log.Warn().Err(err).Msg("cache: set status failed")
		}
	}
	return st, nil
}

func (s *ElectionService) computeStatus(ctx context.Context, club, position string) (*model.ElectionStatus, error) {
	cands, err := s.candidates.ListByRace(ctx, club, position)
	if err != nil {
		return nil, err
	}

	st := &model.ElectionStatus{
		Club:       club,
		Position:   position,
		State:      model.RaceUnconfigured,
		Candidates: cands,
	}

	w, err := s.windows.Get(ctx, club, position)
	if errors.Is(err, model.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, err
	}

	st.State = w.State
	st.Open = s.windowOpen(w)
	st.StartTime = w.StartTime
	st.DurationSeconds = int64(w.Duration / time.Second)
	st.ResultsVisible = w.ResultsVisible
	if st.Open {
		remaining := w.StartTime.Add(w.Duration).Sub(s.now())
		st.RemainingSeconds = int64(remaining / time.Second)
	}
	return st, nil
}

// Windows lists all configured windows (admin overview).
func (s *ElectionService) Windows(ctx context.Context) ([]model.ElectionWindow, error) {
	return s.windows.List(ctx)
}

// CandidateCount reports the total number of registered candidates.
func (s *ElectionService) CandidateCount(ctx context.Context) (int64, error) {
	return s.candidates.CountAll(ctx)
}

func (s *ElectionService) windowOpen(w model.ElectionWindow) bool {
	return w.State == model.RaceOpen && s.now().Before(w.StartTime.Add(w.Duration))
}

// publish drops the race's cached status and notifies subscribers after a
// window mutation.
func (s *ElectionService) publish(ctx context.Context, key model.RaceKey) {
	if s.cache != nil {
		if err := s.cache.InvalidateStatus(ctx, key.Club, key.Position); err != nil {
			s.log.Warn().Err(err).Msg("cache: invalidate status failed")
		}
	}
	if s.bus != nil {
		s.bus.Publish(Event{Kind: EventWindowChanged, Club: key.Club, Position: key.Position})
	}
}
