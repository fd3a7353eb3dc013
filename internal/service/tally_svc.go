package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/ledger"
	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/repository"
)

// TallyService is the read-only reporting layer over settled votes. Counts
// come from the ledger; disclosure is gated by the race's resultsVisible
// flag, independent of whether voting is open.
type TallyService struct {
	windows    repository.WindowStore
	candidates repository.CandidateStore
	ledger     ledger.Ledger
	cache      *CacheService
	log        zerolog.Logger
}

func NewTallyService(windows repository.WindowStore, candidates repository.CandidateStore, lgr ledger.Ledger, cache *CacheService, log zerolog.Logger) *TallyService {
	return &TallyService{
		windows:    windows,
		candidates: candidates,
		ledger:     lgr,
		cache:      cache,
		log:        log.With().Str("component", "tally").Logger(),
	}
}

// Results returns a race's tally, or a hidden marker when disclosure is off.
// Reads are side-effect free apart from cache warming.
func (s *TallyService) Results(ctx context.Context, club, position string) (*model.ResultsResponse, error) {
	resp := &model.ResultsResponse{Club: club, Position: position}

	w, err := s.windows.Get(ctx, club, position)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !w.ResultsVisible) {
		resp.Hidden = true
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := s.cache.GetResults(ctx, club, position); err == nil && data != nil {
			var entries []model.TallyEntry
			if json.Unmarshal(data, &entries) == nil {
				resp.Results = entries
				return resp, nil
			}
		}
	}

	entries, err := s.compute(ctx, club, position)
	if err != nil {
		return nil, err
	}
	resp.Results = entries

	if s.cache != nil {
		if err := s.cache.SetResults(ctx, club, position, entries); err != nil {
			s.log.Warn().Err(err).Msg("cache: set results failed")
		}
	}
	return resp, nil
}

// Refresh recomputes a race's tally and re-warms the cache. Used by the
// tally worker after settle notifications; runs regardless of visibility so
// a later reveal is instant.
func (s *TallyService) Refresh(ctx context.Context, club, position string) error {
	entries, err := s.compute(ctx, club, position)
	if err != nil {
		return err
	}
	if s.cache != nil {
		return s.cache.SetResults(ctx, club, position, entries)
	}
	return nil
}

// compute reads per-candidate counts from the ledger and orders them by
// votes descending, ties broken by candidate insertion order.
func (s *TallyService) compute(ctx context.Context, club, position string) ([]model.TallyEntry, error) {
	cands, err := s.candidates.ListByRace(ctx, club, position)
	if err != nil {
		return nil, err
	}

	entries := make([]model.TallyEntry, 0, len(cands))
	for _, c := range cands {
		votes, err := s.ledger.VoteCount(ctx, club, position, c.ID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, model.TallyEntry{
			CandidateID:   c.ID,
			CandidateName: c.Name,
			Votes:         votes,
		})
	}

	// Stable sort keeps insertion order within equal counts.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Votes > entries[j].Votes
	})
	return entries, nil
}
