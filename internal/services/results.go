package services

import (
	"context"
	"sort"

	"github.com/votely/votely/internal/clock"
	"github.com/votely/votely/internal/logger"
	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/repository"
)

// ResultsServiceRepository defines the repository methods needed by ResultsService
type ResultsServiceRepository interface {
	repository.PollRepository
	repository.BallotRepository
	repository.TallyRepository
}

// ResultsService handles tally reads, visibility gating and percentage derivation
type ResultsService struct {
	log       logger.Logger
	repo      ResultsServiceRepository
	lifecycle *Lifecycle
	clk       clock.Clock
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, repo ResultsServiceRepository, lifecycle *Lifecycle, clk clock.Clock) *ResultsService {
	return &ResultsService{log: log, repo: repo, lifecycle: lifecycle, clk: clk}
}

// OptionResult is one option's share of the tally
type OptionResult struct {
	OptionID string  `json:"option_id"`
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
	Rank     int     `json:"rank"`
}

// PollResults contains a poll's full results view
type PollResults struct {
	PollID     string              `json:"poll_id"`
	Question   string              `json:"question"`
	Status     models.PollStatus   `json:"status"`
	Results    []OptionResult      `json:"results"`
	TotalVotes int                 `json:"total_votes"`
	Trend      []models.TrendPoint `json:"trend,omitempty"`
}

// GetResults returns the poll's results, subject to the poll's visibility
// policy. Percentages are computed here at read time, never persisted.
func (s *ResultsService) GetResults(ctx context.Context, pollID, voterID string) (*PollResults, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	// "Has voted" comes from the ballot set, never from the tally
	hasVoted := false
	if voterID != "" {
		if _, err := s.repo.GetBallot(ctx, pollID, voterID); err == nil {
			hasVoted = true
		} else if err != repository.ErrNotFound {
			return nil, err
		}
	}

	now := s.clk.Now()
	if !s.lifecycle.CanSeeResults(poll, hasVoted, now) {
		return nil, ErrResultsNotVisible
	}

	tally, err := s.repo.GetTally(ctx, pollID)
	if err != nil {
		return nil, err
	}

	results := make([]OptionResult, 0, len(poll.Options))
	for _, opt := range poll.Options {
		count := tally.Counts[opt.ID]
		result := OptionResult{
			OptionID: opt.ID,
			Label:    opt.Label,
			Count:    count,
		}
		if tally.TotalVotes > 0 {
			result.Percent = float64(count) / float64(tally.TotalVotes) * 100
		}
		results = append(results, result)
	}

	// Rank by count descending; equal counts share presentation order
	ranked := make([]int, len(results))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return results[ranked[a]].Count > results[ranked[b]].Count
	})
	for rank, idx := range ranked {
		results[idx].Rank = rank + 1
	}

	return &PollResults{
		PollID:     pollID,
		Question:   poll.Question,
		Status:     s.lifecycle.ResolveStatus(poll, now),
		Results:    results,
		TotalVotes: tally.TotalVotes,
		Trend:      tally.Trend,
	}, nil
}

// PollTally returns the raw tally snapshot for a poll. Used by the
// broadcaster to seed newly joined observers.
func (s *ResultsService) PollTally(ctx context.Context, pollID string) (*models.Tally, error) {
	return s.repo.GetTally(ctx, pollID)
}
