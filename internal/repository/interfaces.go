package repository

import (
	"context"
	"time"

	"github.com/votely/votely/internal/models"
)

// PollRepository defines poll definition data operations
type PollRepository interface {
	CreatePoll(ctx context.Context, poll *models.Poll) error
	GetPoll(ctx context.Context, pollID string) (*models.Poll, error)
	ListPolls(ctx context.Context) ([]PollSummary, error)
}

// BallotRepository defines ballot data operations
type BallotRepository interface {
	GetBallot(ctx context.Context, pollID, voterID string) (*models.Ballot, error)
	RecordBallot(ctx context.Context, ballot *models.Ballot, bucketStart time.Time) (*models.Tally, error)
}

// TallyRepository defines tally read operations
type TallyRepository interface {
	GetTally(ctx context.Context, pollID string) (*models.Tally, error)
	GetPollStats(ctx context.Context, pollID string) (*PollStats, error)
}

// FullRepository combines all repository interfaces.
// Use this when a service needs access to multiple domains.
type FullRepository interface {
	PollRepository
	BallotRepository
	TallyRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
