package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/ledger"
	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/repository"
	"github.com/clubvote/clubvote-go/pkg/hash"
)

// VoteService orchestrates a vote cast. Side effects are strictly ordered:
// candidate check, window check, already-voted check, biometric admission,
// then settlement. The ledger call is the single point of durable
// commitment; nothing is written locally for a vote.
type VoteService struct {
	elections  *ElectionService
	biometrics *BiometricService
	candidates repository.CandidateStore
	ledger     ledger.Ledger
	cache      *CacheService
	bus        *Bus
	locks      *keyedMutex
	log        zerolog.Logger
}

func NewVoteService(
	elections *ElectionService,
	biometrics *BiometricService,
	candidates repository.CandidateStore,
	lgr ledger.Ledger,
	cache *CacheService,
	bus *Bus,
	log zerolog.Logger,
) *VoteService {
	return &VoteService{
		elections:  elections,
		biometrics: biometrics,
		candidates: candidates,
		ledger:     lgr,
		cache:      cache,
		bus:        bus,
		locks:      newKeyedMutex(),
		log:        log.With().Str("component", "votes").Logger(),
	}
}

// Cast processes one vote request end to end.
func (s *VoteService) Cast(ctx context.Context, req model.VoteRequest) (*model.VoteResponse, error) {
	if req.VoterID == "" {
		return nil, model.Validationf("voter id is required")
	}

	cand, err := s.candidates.GetByID(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}
	if cand.Club != req.Club || cand.Position != req.Position {
		return nil, model.NotFoundf("candidate %s is not running for %s/%s", req.CandidateID, req.Club, req.Position)
	}

	open, err := s.elections.IsOpen(ctx, req.Club, req.Position)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: %s/%s is not admitting votes", model.ErrElectionClosed, req.Club, req.Position)
	}

	// Hold the (voter, race) lock across the dedup check, the biometric
	// check and settlement so concurrent casts for the same pair cannot
	// interleave between steps.
	unlock := s.locks.Lock(req.VoterID + "|" + req.Club + "|" + req.Position)
	defer unlock()

	// Checked before biometric work to fail fast and skip the expensive
	// descriptor scan.
	voted, err := s.ledger.HasVoted(ctx, req.VoterID, req.Club, req.Position)
	if err != nil {
		return nil, err
	}
	if voted {
		return nil, fmt.Errorf("%w: one vote per race", model.ErrAlreadyVoted)
	}

	check, err := s.biometrics.EnrollOrVerify(ctx, req.VoterID, req.Descriptor)
	if err != nil {
		return nil, err
	}

	receipt, err := s.ledger.SubmitVote(ctx, ledger.VoteSubmission{
		IdempotencyKey: hash.VoteKey(req.VoterID, req.Club, req.Position),
		VoterID:        req.VoterID,
		Club:           req.Club,
		Position:       req.Position,
		CandidateID:    req.CandidateID,
		Timestamp:      s.elections.now(),
	})
	if errors.Is(err, ledger.ErrDuplicate) {
		return nil, fmt.Errorf("%w: one vote per race", model.ErrAlreadyVoted)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateResults(ctx, req.Club, req.Position); err != nil {
			s.log.Warn().Err(err).Msg("cache: invalidate results failed")
		}
	}
	if s.bus != nil {
		s.bus.Publish(Event{Kind: EventVoteSettled, Club: req.Club, Position: req.Position})
	}

	s.log.Info().
		Str("voter", hash.VoterIDPrefix(req.VoterID)).
		Str("race", req.Club+":"+req.Position).
		Str("receipt", receipt.ID).
		Msg("vote settled")

	return &model.VoteResponse{
		Success:    true,
		Receipt:    receipt.ID,
		Candidate:  cand.Name,
		Similarity: check.Similarity,
	}, nil
}
