package models

import "time"

// PollStatus is the derived temporal state of a poll. It is always computed
// from the schedule and the current time, never persisted.
type PollStatus string

const (
	StatusUpcoming  PollStatus = "upcoming"
	StatusActive    PollStatus = "active"
	StatusCompleted PollStatus = "completed"
)

// ChoiceRule controls how many options a single ballot may select
type ChoiceRule string

const (
	ChoiceSingle   ChoiceRule = "single"
	ChoiceMultiple ChoiceRule = "multiple"
)

// ResultVisibility controls when a caller may read a poll's results
type ResultVisibility string

const (
	VisibilityImmediate  ResultVisibility = "immediate"
	VisibilityAfterVote  ResultVisibility = "after_vote"
	VisibilityAfterClose ResultVisibility = "after_close"
	VisibilityAtTime     ResultVisibility = "at_time"
)

// Option is one answer within a poll. Options are owned by exactly one poll
// and the tally is always keyed by option ID, never by display position.
type Option struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// Poll represents a poll definition and its reporting configuration
type Poll struct {
	ID                 string           `json:"id"`
	Question           string           `json:"question"`
	Options            []Option         `json:"options"`
	ChoiceRule         ChoiceRule       `json:"choice_rule"`
	MaxSelections      int              `json:"max_selections"`
	StartsAt           *time.Time       `json:"starts_at,omitempty"`
	EndsAt             *time.Time       `json:"ends_at,omitempty"`
	ResultVisibility   ResultVisibility `json:"result_visibility"`
	VisibleAt          *time.Time       `json:"visible_at,omitempty"`
	TrendBucketSeconds int              `json:"trend_bucket_seconds"`
	ShuffleOptions     bool             `json:"shuffle_options"`
	CreatedAt          time.Time        `json:"created_at"`
}

// HasOption reports whether the given option ID belongs to this poll
func (p *Poll) HasOption(optionID string) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// TrendBucket returns the configured trend bucket width
func (p *Poll) TrendBucket() time.Duration {
	return time.Duration(p.TrendBucketSeconds) * time.Second
}

// Ballot is one voter's accepted, immutable selection record for a poll.
// At most one ballot may ever exist per (PollID, VoterID) pair.
type Ballot struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	VoterID    string    `json:"voter_id"`
	Selections []string  `json:"selections"`
	AcceptedAt time.Time `json:"accepted_at"`
}

// TrendPoint is one time bucket of accepted ballots
type TrendPoint struct {
	BucketStart time.Time `json:"bucket_start"`
	Count       int       `json:"count"`
}

// Tally holds the aggregate counts for a poll. TotalVotes counts ballots,
// not selections, so for multi-choice polls the sum of Counts may exceed it.
// Percentages are derived at read time and never stored.
type Tally struct {
	PollID     string         `json:"poll_id"`
	Counts     map[string]int `json:"counts"`
	TotalVotes int            `json:"total_votes"`
	Trend      []TrendPoint   `json:"trend,omitempty"`
}

// WSMessage represents a WebSocket message pushed to observers
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
