package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/votely/votely/internal/clock"
	"github.com/votely/votely/internal/logger"
	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/repository"
)

// maxSubmitAttempts bounds retries of the submission transaction on
// transient storage errors. Retrying is safe: the uniqueness constraint
// makes a replayed submission land exactly once.
const maxSubmitAttempts = 3

// Broadcaster defines the interface for pushing tally updates to observers
type Broadcaster interface {
	TallyChanged(pollID string, tally *models.Tally)
}

// VotingServiceRepository defines the repository methods needed by VotingService
type VotingServiceRepository interface {
	repository.PollRepository
	repository.BallotRepository
}

// VotingService handles ballot admission and submission
type VotingService struct {
	log         logger.Logger
	repo        VotingServiceRepository
	lifecycle   *Lifecycle
	receipts    *ReceiptIssuer
	clk         clock.Clock
	broadcaster Broadcaster
}

// NewVotingService creates a new VotingService
func NewVotingService(log logger.Logger, repo VotingServiceRepository, lifecycle *Lifecycle, receipts *ReceiptIssuer, clk clock.Clock) *VotingService {
	return &VotingService{
		log:       log,
		repo:      repo,
		lifecycle: lifecycle,
		receipts:  receipts,
		clk:       clk,
	}
}

// SetBroadcaster sets the broadcaster for pushing tally updates to observers
func (s *VotingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// VoteResult contains the result of an accepted vote submission
type VoteResult struct {
	PollID     string        `json:"poll_id"`
	Selections []string      `json:"selections"`
	Receipt    string        `json:"receipt"`
	Tally      *models.Tally `json:"tally"`
}

// SubmitVote admits, validates and records a ballot, then broadcasts the
// updated tally to the poll's room. Admission and the tally update commit as
// one transaction; the broadcast happens only after the vote is durable and
// its failure never surfaces to the submitter.
func (s *VotingService) SubmitVote(ctx context.Context, pollID, voterID string, selections []string) (*VoteResult, error) {
	if voterID == "" {
		return nil, ErrVoterRequired
	}

	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	if status := s.lifecycle.ResolveStatus(poll, s.clk.Now()); status != models.StatusActive {
		return nil, ErrPollNotActive
	}

	selections, err = ValidateSelections(poll, selections)
	if err != nil {
		return nil, err
	}

	acceptedAt := s.clk.Now().UTC()
	ballot := &models.Ballot{
		ID:         uuid.NewString(),
		PollID:     pollID,
		VoterID:    voterID,
		Selections: selections,
		AcceptedAt: acceptedAt,
	}
	bucketStart := acceptedAt.Truncate(poll.TrendBucket())

	var tally *models.Tally
	for attempt := 1; ; attempt++ {
		tally, err = s.repo.RecordBallot(ctx, ballot, bucketStart)
		if err == nil {
			break
		}
		if err == repository.ErrDuplicateBallot {
			return nil, ErrAlreadyVoted
		}
		if repository.IsTransient(err) && attempt < maxSubmitAttempts {
			s.log.Warn("Ballot transaction retry", "poll_id", pollID, "attempt", attempt, "error", err)
			continue
		}
		return nil, err
	}

	receipt := s.receipts.Issue(ballot)
	s.log.Info("Ballot accepted", "poll_id", pollID, "ballot_id", ballot.ID, "total_votes", tally.TotalVotes)

	if s.broadcaster != nil {
		s.broadcaster.TallyChanged(pollID, tally)
	}

	return &VoteResult{
		PollID:     pollID,
		Selections: selections,
		Receipt:    receipt,
		Tally:      tally,
	}, nil
}

// BallotStatus is a voter's own accepted ballot with its receipt
type BallotStatus struct {
	Ballot  *models.Ballot `json:"ballot"`
	Receipt string         `json:"receipt"`
}

// GetBallotStatus returns the voter's own ballot, or ErrBallotNotFound when
// the voter has not voted. The receipt is re-derived from the stored ballot,
// so a retried read yields the same hash the submission returned.
func (s *VotingService) GetBallotStatus(ctx context.Context, pollID, voterID string) (*BallotStatus, error) {
	if voterID == "" {
		return nil, ErrVoterRequired
	}

	if _, err := s.repo.GetPoll(ctx, pollID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	ballot, err := s.repo.GetBallot(ctx, pollID, voterID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrBallotNotFound
		}
		return nil, err
	}

	return &BallotStatus{
		Ballot:  ballot,
		Receipt: s.receipts.Issue(ballot),
	}, nil
}
