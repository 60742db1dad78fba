package services

import (
	"context"

	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/repository"
)

// VotingServicer defines the interface for ballot submission operations
type VotingServicer interface {
	SubmitVote(ctx context.Context, pollID, voterID string, selections []string) (*VoteResult, error)
	GetBallotStatus(ctx context.Context, pollID, voterID string) (*BallotStatus, error)
}

// ResultsServicer defines the interface for results operations
type ResultsServicer interface {
	GetResults(ctx context.Context, pollID, voterID string) (*PollResults, error)
	PollTally(ctx context.Context, pollID string) (*models.Tally, error)
}

// PollServicer defines the interface for poll definition operations
type PollServicer interface {
	GetPoll(ctx context.Context, pollID string) (*PollView, error)
	CreatePoll(ctx context.Context, poll *models.Poll) (*models.Poll, error)
	ListPolls(ctx context.Context) ([]repository.PollSummary, error)
	GetStats(ctx context.Context, pollID string) (*PollStatsView, error)
	ShareQR(ctx context.Context, pollID string) ([]byte, error)
}

// Ensure concrete types implement interfaces
var (
	_ VotingServicer  = (*VotingService)(nil)
	_ ResultsServicer = (*ResultsService)(nil)
	_ PollServicer    = (*PollService)(nil)
)
