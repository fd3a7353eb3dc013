package facevec

import (
	"fmt"
	"math"
)

// MatchThreshold is the maximum Euclidean distance at which two descriptors
// are considered the same person.
const MatchThreshold = 0.6

// DefaultDim is the descriptor length produced by the face recognition model.
const DefaultDim = 128

// Distance returns the Euclidean distance between two equal-length descriptors.
func Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("descriptor length mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Match reports whether two descriptors belong to the same person, using
// the fixed MatchThreshold.
func Match(a, b []float64) (bool, error) {
	dist, err := Distance(a, b)
	if err != nil {
		return false, err
	}
	return dist < MatchThreshold, nil
}

// Similarity converts a distance into a 0–100 similarity percentage.
// Diagnostic only; admission decisions use the threshold, never this value.
func Similarity(dist float64) float64 {
	return math.Max(0, 100-dist*20)
}
