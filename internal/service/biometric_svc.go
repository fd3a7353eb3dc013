package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/repository"
	"github.com/clubvote/clubvote-go/pkg/facevec"
)

// BiometricService prevents one physical person from enrolling under more
// than one voter identity by comparing face descriptors against every
// previously enrolled template.
type BiometricService struct {
	templates      repository.TemplateStore
	dim            int
	strictReverify bool
	now            func() time.Time
	log            zerolog.Logger

	// mu serializes the check-then-insert sequence across the whole
	// registry so two concurrent first-time enrollments with similar
	// descriptors cannot both pass the fraud scan.
	mu sync.Mutex
}

func NewBiometricService(templates repository.TemplateStore, dim int, strictReverify bool, log zerolog.Logger) *BiometricService {
	if dim <= 0 {
		dim = facevec.DefaultDim
	}
	return &BiometricService{
		templates:      templates,
		dim:            dim,
		strictReverify: strictReverify,
		now:            time.Now,
		log:            log.With().Str("component", "biometrics").Logger(),
	}
}

// EnrollOrVerify admits or rejects a face capture for the given identity.
//
// An identity with a stored template is re-verified against its own template
// only. A first-time identity is scanned against every other enrolled
// template; any match within the threshold is fraud and nothing is stored.
func (s *BiometricService) EnrollOrVerify(ctx context.Context, voterID string, descriptor []float64) (model.EnrollResult, error) {
	if voterID == "" {
		return model.EnrollResult{}, model.Validationf("voter id is required")
	}
	if len(descriptor) != s.dim {
		return model.EnrollResult{}, model.Validationf("descriptor must have %d dimensions, got %d", s.dim, len(descriptor))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	own, err := s.templates.Get(ctx, voterID)
	if err == nil {
		return s.verifyOwn(voterID, own, descriptor)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.EnrollResult{}, err
	}

	all, err := s.templates.List(ctx)
	if err != nil {
		return model.EnrollResult{}, err
	}

	for _, tpl := range all {
		if tpl.VoterID == voterID {
			continue
		}
		dist, err := facevec.Distance(descriptor, tpl.Descriptor)
		if err != nil {
			return model.EnrollResult{}, model.Validationf("stored template dimension mismatch: %v", err)
		}
		if dist < facevec.MatchThreshold {
			sim := facevec.Similarity(dist)
			s.log.Warn().
				Str("owner", tpl.VoterID).
				Float64("distance", dist).
				Msg("fraud detected: face already enrolled under another identity")
			return model.EnrollResult{Outcome: model.EnrollFraud, OwnerID: tpl.VoterID, Similarity: sim},
				&model.FraudError{OwnerID: tpl.VoterID, Similarity: sim}
		}
	}

	tpl := model.BiometricTemplate{
		VoterID:    voterID,
		Descriptor: descriptor,
		EnrolledAt: s.now(),
	}
	if err := s.templates.Insert(ctx, tpl); err != nil {
		return model.EnrollResult{}, err
	}

	s.log.Info().Int("dim", s.dim).Msg("voter enrolled")
	return model.EnrollResult{Outcome: model.EnrollRegistered}, nil
}

// verifyOwn handles a repeat visit for an already-enrolled identity. With
// strict re-verification off, any capture is accepted as the owner's face;
// the similarity score is still reported for diagnostics.
func (s *BiometricService) verifyOwn(voterID string, own model.BiometricTemplate, descriptor []float64) (model.EnrollResult, error) {
	dist, err := facevec.Distance(descriptor, own.Descriptor)
	if err != nil {
		return model.EnrollResult{}, model.Validationf("stored template dimension mismatch: %v", err)
	}
	sim := facevec.Similarity(dist)

	if s.strictReverify && dist >= facevec.MatchThreshold {
		s.log.Warn().Float64("distance", dist).Msg("re-capture does not match enrolled template")
		return model.EnrollResult{Outcome: model.EnrollFraud, OwnerID: voterID, Similarity: sim},
			&model.FraudError{OwnerID: voterID, Similarity: sim}
	}

	return model.EnrollResult{Outcome: model.EnrollOwnFace, Similarity: sim}, nil
}
