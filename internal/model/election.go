package model

import "time"

// RaceState is the lifecycle state of one (club, position) election window.
type RaceState string

const (
	RaceUnconfigured RaceState = "unconfigured"
	RaceConfigured   RaceState = "configured"
	RaceOpen         RaceState = "open"
	RaceClosed       RaceState = "closed"
)

// RaceKey identifies a single contested election. Club and position are
// case-sensitive exact strings; there is no fuzzy matching.
type RaceKey struct {
	Club     string
	Position string
}

func (k RaceKey) String() string {
	return k.Club + ":" + k.Position
}

// ElectionWindow is the admin-controlled voting window for one race.
// State tracks explicit transitions only; effective admission additionally
// requires now < StartTime + Duration (lazy expiry).
type ElectionWindow struct {
	Club           string        `json:"club"`
	Position       string        `json:"position"`
	State          RaceState     `json:"state"`
	StartTime      time.Time     `json:"startTime,omitzero"`
	Duration       time.Duration `json:"-"`
	ResultsVisible bool          `json:"resultsVisible"`
}

// ElectionStatus is the voter-facing view of a race.
type ElectionStatus struct {
	Club             string      `json:"club"`
	Position         string      `json:"position"`
	State            RaceState   `json:"state"`
	Open             bool        `json:"open"`
	StartTime        time.Time   `json:"startTime,omitzero"`
	DurationSeconds  int64       `json:"durationSeconds"`
	RemainingSeconds int64       `json:"remainingSeconds"`
	ResultsVisible   bool        `json:"resultsVisible"`
	Candidates       []Candidate `json:"candidates"`
}

// SetDurationRequest is the API request body for configuring a window.
type SetDurationRequest struct {
	Club            string `json:"club"`
	Position        string `json:"position"`
	DurationSeconds int64  `json:"durationSeconds"`
}

// RaceRequest names a race for start/end/visibility operations.
type RaceRequest struct {
	Club     string `json:"club"`
	Position string `json:"position"`
}

// SetResultsVisibleRequest toggles result disclosure for a race.
type SetResultsVisibleRequest struct {
	Club     string `json:"club"`
	Position string `json:"position"`
	Visible  bool   `json:"visible"`
}
