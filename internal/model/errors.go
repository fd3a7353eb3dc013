package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's failure taxonomy. Handlers map these to
// HTTP status codes and stable error codes; callers use errors.Is to decide
// retry eligibility.
var (
	// ErrValidation: malformed input such as an empty name, a non-positive
	// duration or a mismatched descriptor length. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound: unknown candidate or race. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: illegal window transition (e.g. ending a race that
	// is not open).
	ErrInvalidState = errors.New("invalid state transition")

	// ErrElectionClosed: the race is not admitting votes.
	ErrElectionClosed = errors.New("election closed")

	// ErrAlreadyVoted: a vote for this (voter, race) already settled.
	// Terminal for that pair.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrSettlement: the settlement backend failed. Retryable from scratch;
	// no partial engine state is retained.
	ErrSettlement = errors.New("settlement failed")

	// ErrExtraction: the biometric extractor produced no usable descriptor.
	// Retryable with a new capture.
	ErrExtraction = errors.New("no face detected")
)

// FraudError reports a biometric match against a different enrolled identity.
// Terminal for the presenting identity.
type FraudError struct {
	OwnerID    string
	Similarity float64
}

func (e *FraudError) Error() string {
	return fmt.Sprintf("face already enrolled by another identity (%s)", e.OwnerID)
}

// Validationf wraps ErrValidation with a formatted detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted detail message.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}
