package handlers

import "time"

// VoteSubmitRequest represents a request to submit a ballot
type VoteSubmitRequest struct {
	VoterID    string   `json:"voter_id"`
	Selections []string `json:"selections"`
}

// PollCreateRequest represents a request to create a poll
type PollCreateRequest struct {
	Question           string     `json:"question"`
	Options            []string   `json:"options"`
	ChoiceRule         string     `json:"choice_rule"`
	MaxSelections      int        `json:"max_selections"`
	StartsAt           *time.Time `json:"starts_at"`
	EndsAt             *time.Time `json:"ends_at"`
	ResultVisibility   string     `json:"result_visibility"`
	VisibleAt          *time.Time `json:"visible_at"`
	TrendBucketSeconds int        `json:"trend_bucket_seconds"`
	ShuffleOptions     bool       `json:"shuffle_options"`
}

// LoginRequest represents an admin login request
type LoginRequest struct {
	Password string `json:"password"`
}
