package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/repository/memory"
	"github.com/clubvote/clubvote-go/pkg/facevec"
)

// descriptor builds a 128-dim vector whose distance to descriptor(y) is
// exactly |x-y|, keeping threshold arithmetic obvious in the tests below.
func descriptor(x float64) []float64 {
	v := make([]float64, facevec.DefaultDim)
	v[0] = x
	return v
}

func newBiometricService(strict bool) *BiometricService {
	return NewBiometricService(memory.NewTemplateStore(), facevec.DefaultDim, strict, zerolog.Nop())
}

func TestEnrollOrVerify_FirstEnrollment(t *testing.T) {
	svc := newBiometricService(false)

	res, err := svc.EnrollOrVerify(context.Background(), "v1", descriptor(0))
	if err != nil {
		t.Fatalf("EnrollOrVerify() error = %v", err)
	}
	if res.Outcome != model.EnrollRegistered {
		t.Errorf("outcome = %s, want %s", res.Outcome, model.EnrollRegistered)
	}
}

func TestEnrollOrVerify_Validation(t *testing.T) {
	svc := newBiometricService(false)
	ctx := context.Background()

	if _, err := svc.EnrollOrVerify(ctx, "", descriptor(0)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("empty voter id error = %v, want ValidationError", err)
	}
	if _, err := svc.EnrollOrVerify(ctx, "v1", make([]float64, 64)); !errors.Is(err, model.ErrValidation) {
		t.Errorf("short descriptor error = %v, want ValidationError", err)
	}
	if _, err := svc.EnrollOrVerify(ctx, "v1", nil); !errors.Is(err, model.ErrValidation) {
		t.Errorf("nil descriptor error = %v, want ValidationError", err)
	}
}

func TestEnrollOrVerify_SameFaceNewIdentity(t *testing.T) {
	svc := newBiometricService(false)
	ctx := context.Background()

	if _, err := svc.EnrollOrVerify(ctx, "v1", descriptor(0)); err != nil {
		t.Fatalf("enroll v1: %v", err)
	}

	// Same physical face (distance 0.3, inside the 0.6 threshold) under a
	// second identity must be rejected and must name the original owner.
	res, err := svc.EnrollOrVerify(ctx, "v2", descriptor(0.3))

	var fraud *model.FraudError
	if !errors.As(err, &fraud) {
		t.Fatalf("error = %v, want FraudError", err)
	}
	if fraud.OwnerID != "v1" {
		t.Errorf("fraud owner = %s, want v1", fraud.OwnerID)
	}
	if res.Outcome != model.EnrollFraud {
		t.Errorf("outcome = %s, want %s", res.Outcome, model.EnrollFraud)
	}
	wantSim := facevec.Similarity(0.3) // 94
	if res.Similarity != wantSim {
		t.Errorf("similarity = %.2f, want %.2f", res.Similarity, wantSim)
	}

	// The rejected identity must not have been enrolled.
	res, err = svc.EnrollOrVerify(ctx, "v3", descriptor(0.3))
	if !errors.As(err, &fraud) {
		t.Fatalf("v3 error = %v, want FraudError", err)
	}
	if fraud.OwnerID != "v1" {
		t.Errorf("v3 fraud owner = %s, want v1 (v2 must not be stored)", fraud.OwnerID)
	}
}

func TestEnrollOrVerify_DistinctFaces(t *testing.T) {
	svc := newBiometricService(false)
	ctx := context.Background()

	if _, err := svc.EnrollOrVerify(ctx, "v1", descriptor(0)); err != nil {
		t.Fatalf("enroll v1: %v", err)
	}

	// Distance 2.0 is well outside the threshold; both identities coexist.
	res, err := svc.EnrollOrVerify(ctx, "v2", descriptor(2.0))
	if err != nil {
		t.Fatalf("enroll v2: %v", err)
	}
	if res.Outcome != model.EnrollRegistered {
		t.Errorf("outcome = %s, want %s", res.Outcome, model.EnrollRegistered)
	}
}

func TestEnrollOrVerify_ThresholdBoundary(t *testing.T) {
	svc := newBiometricService(false)
	ctx := context.Background()

	if _, err := svc.EnrollOrVerify(ctx, "v1", descriptor(0)); err != nil {
		t.Fatalf("enroll v1: %v", err)
	}

	// Exactly at the threshold counts as a different face (strict less-than).
	res, err := svc.EnrollOrVerify(ctx, "v2", descriptor(facevec.MatchThreshold))
	if err != nil {
		t.Fatalf("enroll at boundary: %v", err)
	}
	if res.Outcome != model.EnrollRegistered {
		t.Errorf("outcome at distance == threshold = %s, want %s", res.Outcome, model.EnrollRegistered)
	}
}

func TestEnrollOrVerify_RepeatVisit(t *testing.T) {
	svc := newBiometricService(false)
	ctx := context.Background()

	if _, err := svc.EnrollOrVerify(ctx, "v1", descriptor(0)); err != nil {
		t.Fatalf("enroll v1: %v", err)
	}

	res, err := svc.EnrollOrVerify(ctx, "v1", descriptor(0.1))
	if err != nil {
		t.Fatalf("repeat visit: %v", err)
	}
	if res.Outcome != model.EnrollOwnFace {
		t.Errorf("outcome = %s, want %s", res.Outcome, model.EnrollOwnFace)
	}

	// Lenient mode trusts the claimed identity even for a poor capture.
	res, err = svc.EnrollOrVerify(ctx, "v1", descriptor(3.0))
	if err != nil {
		t.Fatalf("poor recapture (lenient): %v", err)
	}
	if res.Outcome != model.EnrollOwnFace {
		t.Errorf("lenient outcome = %s, want %s", res.Outcome, model.EnrollOwnFace)
	}
}

func TestEnrollOrVerify_StrictReverify(t *testing.T) {
	svc := newBiometricService(true)
	ctx := context.Background()

	if _, err := svc.EnrollOrVerify(ctx, "v1", descriptor(0)); err != nil {
		t.Fatalf("enroll v1: %v", err)
	}

	// Close recapture still passes.
	res, err := svc.EnrollOrVerify(ctx, "v1", descriptor(0.1))
	if err != nil {
		t.Fatalf("close recapture: %v", err)
	}
	if res.Outcome != model.EnrollOwnFace {
		t.Errorf("outcome = %s, want %s", res.Outcome, model.EnrollOwnFace)
	}

	// A recapture outside the threshold is rejected in strict mode.
	_, err = svc.EnrollOrVerify(ctx, "v1", descriptor(3.0))
	var fraud *model.FraudError
	if !errors.As(err, &fraud) {
		t.Fatalf("strict recapture error = %v, want FraudError", err)
	}
	if fraud.OwnerID != "v1" {
		t.Errorf("fraud owner = %s, want v1", fraud.OwnerID)
	}
}

func TestEnrollOrVerify_ConcurrentSameFace(t *testing.T) {
	svc := newBiometricService(false)
	ctx := context.Background()

	// Many identities race to enroll near-identical descriptors. Exactly one
	// may win; everyone else must be flagged against the winner.
	const n = 16
	var wg sync.WaitGroup
	registered := make(chan string, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			res, err := svc.EnrollOrVerify(ctx, id, descriptor(float64(i)*0.01))
			if err == nil && res.Outcome == model.EnrollRegistered {
				registered <- id
			}
		}(i)
	}
	wg.Wait()
	close(registered)

	var winners []string
	for id := range registered {
		winners = append(winners, id)
	}
	if len(winners) != 1 {
		t.Fatalf("registered identities = %v, want exactly 1", winners)
	}
}
