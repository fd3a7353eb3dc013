package facevec

import (
	"math"
	"testing"
)

func vec(dim int, fill float64) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = fill
	}
	return v
}

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{"identical vectors", vec(128, 0.5), vec(128, 0.5), 0},
		{"unit difference one axis", []float64{0, 0, 0}, []float64{1, 0, 0}, 1},
		{"3-4-5 triangle", []float64{0, 0}, []float64{3, 4}, 5},
		{"small per-axis offset", []float64{0, 0, 0, 0}, []float64{0.1, 0.1, 0.1, 0.1}, 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Distance(tt.a, tt.b)
			if err != nil {
				t.Fatalf("Distance() error = %v", err)
			}
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("Distance() = %.6f, want %.6f", got, tt.want)
			}
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := []float64{0.12, -0.5, 0.33, 0.9}
	b := []float64{-0.4, 0.25, 0.1, 0.0}

	ab, err := Distance(a, b)
	if err != nil {
		t.Fatalf("Distance(a, b) error = %v", err)
	}
	ba, err := Distance(b, a)
	if err != nil {
		t.Fatalf("Distance(b, a) error = %v", err)
	}
	if ab != ba {
		t.Errorf("Distance not symmetric: d(a,b)=%.9f d(b,a)=%.9f", ab, ba)
	}
}

func TestDistance_LengthMismatch(t *testing.T) {
	if _, err := Distance(vec(128, 0), vec(127, 0)); err == nil {
		t.Error("expected error for mismatched descriptor lengths")
	}
	if _, err := Match(vec(64, 0), vec(128, 0)); err == nil {
		t.Error("expected error from Match for mismatched descriptor lengths")
	}
}

func TestMatch_Threshold(t *testing.T) {
	base := vec(128, 0)

	// distance 0.01, same person
	near := vec(128, 0)
	near[0] = 0.01
	ok, err := Match(base, near)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !ok {
		t.Error("vectors at distance 0.01 should match")
	}

	// distance well above 0.6, different person
	far := vec(128, 10)
	ok, err = Match(base, far)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if ok {
		t.Error("vectors at large distance should not match")
	}

	// exactly at the threshold is NOT a match (strict less-than)
	edge := vec(128, 0)
	edge[0] = MatchThreshold
	ok, err = Match(base, edge)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if ok {
		t.Error("distance equal to threshold should not match")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		dist float64
		want float64
	}{
		{"identical", 0, 100},
		{"at threshold", 0.6, 88},
		{"distance 1.0", 1.0, 80},
		{"very far clamps to zero", 9.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.dist)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("Similarity(%.2f) = %.2f, want %.2f", tt.dist, got, tt.want)
			}
		})
	}
}
