package mock

import (
	"context"
	"time"

	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.RecordBallotError = errors.New("database error")
//	svc := services.NewVotingService(log, mockRepo, lifecycle, issuer, clk)
//	_, err := svc.SubmitVote(ctx, pollID, "voter-1", selections)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	CreatePollError   error
	GetPollError      error
	ListPollsError    error
	GetBallotError    error
	RecordBallotError error
	GetTallyError     error
	GetPollStatsError error

	// RecordBallotErrors, when non-empty, is consumed one error per call
	// before RecordBallot is delegated. Used to exercise transient retry.
	RecordBallotErrors []error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{FullRepository: real}
}

func (m *Repository) CreatePoll(ctx context.Context, poll *models.Poll) error {
	if m.CreatePollError != nil {
		return m.CreatePollError
	}
	return m.FullRepository.CreatePoll(ctx, poll)
}

func (m *Repository) GetPoll(ctx context.Context, pollID string) (*models.Poll, error) {
	if m.GetPollError != nil {
		return nil, m.GetPollError
	}
	return m.FullRepository.GetPoll(ctx, pollID)
}

func (m *Repository) ListPolls(ctx context.Context) ([]repository.PollSummary, error) {
	if m.ListPollsError != nil {
		return nil, m.ListPollsError
	}
	return m.FullRepository.ListPolls(ctx)
}

func (m *Repository) GetBallot(ctx context.Context, pollID, voterID string) (*models.Ballot, error) {
	if m.GetBallotError != nil {
		return nil, m.GetBallotError
	}
	return m.FullRepository.GetBallot(ctx, pollID, voterID)
}

func (m *Repository) RecordBallot(ctx context.Context, ballot *models.Ballot, bucketStart time.Time) (*models.Tally, error) {
	if len(m.RecordBallotErrors) > 0 {
		err := m.RecordBallotErrors[0]
		m.RecordBallotErrors = m.RecordBallotErrors[1:]
		return nil, err
	}
	if m.RecordBallotError != nil {
		return nil, m.RecordBallotError
	}
	return m.FullRepository.RecordBallot(ctx, ballot, bucketStart)
}

func (m *Repository) GetTally(ctx context.Context, pollID string) (*models.Tally, error) {
	if m.GetTallyError != nil {
		return nil, m.GetTallyError
	}
	return m.FullRepository.GetTally(ctx, pollID)
}

func (m *Repository) GetPollStats(ctx context.Context, pollID string) (*repository.PollStats, error) {
	if m.GetPollStatsError != nil {
		return nil, m.GetPollStatsError
	}
	return m.FullRepository.GetPollStats(ctx, pollID)
}
