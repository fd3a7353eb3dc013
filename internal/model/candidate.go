package model

import "time"

// Candidate represents one contender in a single (club, position) race.
type Candidate struct {
	ID        string    `json:"id"`
	Club      string    `json:"club"`
	Position  string    `json:"position"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddCandidateRequest is the API request body for registering a candidate.
type AddCandidateRequest struct {
	Club     string `json:"club"`
	Position string `json:"position"`
	Name     string `json:"name"`
}
