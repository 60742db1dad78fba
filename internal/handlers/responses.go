package handlers

import "time"

// VoteResponse is the response for an accepted vote submission
type VoteResponse struct {
	PollID     string         `json:"poll_id"`
	Selections []string       `json:"selections"`
	Receipt    string         `json:"receipt"`
	Counts     map[string]int `json:"counts"`
	TotalVotes int            `json:"total_votes"`
}

// BallotStatusResponse is the response for a voter's own ballot lookup.
// It never carries another voter's selections or receipt.
type BallotStatusResponse struct {
	PollID     string    `json:"poll_id"`
	Selections []string  `json:"selections"`
	AcceptedAt time.Time `json:"accepted_at"`
	Receipt    string    `json:"receipt"`
}

// LoginResponse confirms a successful admin login
type LoginResponse struct {
	Status string `json:"status"`
}
