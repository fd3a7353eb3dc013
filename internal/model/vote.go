package model

// VoteRequest is the API request body for casting a vote.
type VoteRequest struct {
	VoterID     string    `json:"voterId"`
	Club        string    `json:"club"`
	Position    string    `json:"position"`
	CandidateID string    `json:"candidateId"`
	Descriptor  []float64 `json:"descriptor"`
}

// VoteResponse is returned after a vote settles.
type VoteResponse struct {
	Success    bool    `json:"success"`
	Receipt    string  `json:"receipt"`
	Candidate  string  `json:"candidate"`
	Similarity float64 `json:"faceSimilarity,omitempty"`
}

// TallyEntry is one row of a revealed result set.
type TallyEntry struct {
	CandidateID   string `json:"candidateId"`
	CandidateName string `json:"candidateName"`
	Votes         int64  `json:"votes"`
}

// ResultsResponse wraps a tally. Hidden is set (and Results omitted) when
// the race admin has not enabled disclosure.
type ResultsResponse struct {
	Club     string       `json:"club"`
	Position string       `json:"position"`
	Hidden   bool         `json:"hidden"`
	Results  []TallyEntry `json:"results,omitempty"`
}
