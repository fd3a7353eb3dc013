package model

import "time"

// BiometricTemplate is the enrolled face descriptor for one voter identity.
// Created at most once per voter; never mutated in normal operation.
type BiometricTemplate struct {
	VoterID    string    `json:"voterId"`
	Descriptor []float64 `json:"-"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// EnrollOutcome classifies the result of a biometric admission check.
type EnrollOutcome string

const (
	// EnrollRegistered means a first-time template was stored.
	EnrollRegistered EnrollOutcome = "registered"
	// EnrollOwnFace means the identity already had a template.
	EnrollOwnFace EnrollOutcome = "already_own_face"
	// EnrollFraud means the descriptor matched a different enrolled identity.
	EnrollFraud EnrollOutcome = "fraud_detected"
)

// EnrollResult is the outcome of an enrollOrVerify call. Similarity is a
// diagnostic percentage against the closest stored template and plays no
// part in admission.
type EnrollResult struct {
	Outcome    EnrollOutcome `json:"outcome"`
	OwnerID    string        `json:"ownerId,omitempty"`
	Similarity float64       `json:"similarity,omitempty"`
}
