package services

import (
	"context"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/votely/votely/internal/clock"
	"github.com/votely/votely/internal/errors"
	"github.com/votely/votely/internal/logger"
	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/repository"
)

// defaultTrendBucketSeconds is used when a new poll does not configure
// a reporting bucket width.
const defaultTrendBucketSeconds = 60

// RoomCounter reports how many observers are subscribed to a poll's room
type RoomCounter interface {
	RoomSize(pollID string) int
}

// PollServiceRepository defines the repository methods needed by PollService
type PollServiceRepository interface {
	repository.PollRepository
	repository.TallyRepository
}

// PollService handles poll definition reads and admin management
type PollService struct {
	log       logger.Logger
	repo      PollServiceRepository
	lifecycle *Lifecycle
	clk       clock.Clock
	baseURL   string
	rooms     RoomCounter
}

// NewPollService creates a new PollService. baseURL is used to build the
// shareable voting link encoded in QR images.
func NewPollService(log logger.Logger, repo PollServiceRepository, lifecycle *Lifecycle, clk clock.Clock, baseURL string) *PollService {
	return &PollService{log: log, repo: repo, lifecycle: lifecycle, clk: clk, baseURL: baseURL}
}

// SetRoomCounter sets the observer-count source for poll stats
func (s *PollService) SetRoomCounter(rc RoomCounter) {
	s.rooms = rc
}

// SetBaseURL overrides the base URL used for share links
func (s *PollService) SetBaseURL(baseURL string) {
	s.baseURL = baseURL
}

// PollView is a poll definition with its derived status
type PollView struct {
	models.Poll
	Status models.PollStatus `json:"status"`
}

// GetPoll returns a poll with its status derived at read time. When the poll
// requests shuffled presentation the options are reordered per call; option
// identity stays stable and the tally is never keyed by position.
func (s *PollService) GetPoll(ctx context.Context, pollID string) (*PollView, error) {
	poll, err := s.repo.GetPoll(ctx, pollID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	if poll.ShuffleOptions {
		rand.Shuffle(len(poll.Options), func(i, j int) {
			poll.Options[i], poll.Options[j] = poll.Options[j], poll.Options[i]
		})
	}

	return &PollView{
		Poll:   *poll,
		Status: s.lifecycle.ResolveStatus(poll, s.clk.Now()),
	}, nil
}

// CreatePoll validates and persists a new poll definition. IDs and option
// positions are assigned here; the caller supplies labels and configuration.
func (s *PollService) CreatePoll(ctx context.Context, poll *models.Poll) (*models.Poll, error) {
	if strings.TrimSpace(poll.Question) == "" {
		return nil, errors.Validation("question is required")
	}
	if len(poll.Options) < 2 {
		return nil, errors.Validation("a poll needs at least two options")
	}
	for _, opt := range poll.Options {
		if strings.TrimSpace(opt.Label) == "" {
			return nil, errors.Validation("option labels must not be empty")
		}
	}

	switch poll.ChoiceRule {
	case models.ChoiceSingle:
		poll.MaxSelections = 1
	case models.ChoiceMultiple:
		if poll.MaxSelections < 1 {
			return nil, errors.Validation("max_selections must be at least 1")
		}
	default:
		return nil, errors.Validationf("unknown choice rule %q", poll.ChoiceRule)
	}

	switch poll.ResultVisibility {
	case models.VisibilityImmediate, models.VisibilityAfterVote, models.VisibilityAfterClose:
	case models.VisibilityAtTime:
		if poll.VisibleAt == nil {
			return nil, errors.Validation("visible_at is required for at_time visibility")
		}
	case "":
		poll.ResultVisibility = models.VisibilityImmediate
	default:
		return nil, errors.Validationf("unknown result visibility %q", poll.ResultVisibility)
	}

	if poll.StartsAt != nil && poll.EndsAt != nil && !poll.EndsAt.After(*poll.StartsAt) {
		return nil, errors.Validation("ends_at must be after starts_at")
	}

	if poll.TrendBucketSeconds == 0 {
		poll.TrendBucketSeconds = defaultTrendBucketSeconds
	}
	if poll.TrendBucketSeconds < 0 {
		return nil, errors.Validation("trend_bucket_seconds must be positive")
	}

	poll.ID = uuid.NewString()
	for i := range poll.Options {
		poll.Options[i].ID = uuid.NewString()
		poll.Options[i].Position = i
	}

	if err := s.repo.CreatePoll(ctx, poll); err != nil {
		return nil, err
	}

	s.log.Info("Poll created", "poll_id", poll.ID, "options", len(poll.Options))
	return poll, nil
}

// ListPolls returns all polls with their current ballot counts
func (s *PollService) ListPolls(ctx context.Context) ([]repository.PollSummary, error) {
	return s.repo.ListPolls(ctx)
}

// PollStatsView combines storage stats with live observer counts
type PollStatsView struct {
	repository.PollStats
	Observers int `json:"observers"`
}

// GetStats returns submission and observer statistics for a poll
func (s *PollService) GetStats(ctx context.Context, pollID string) (*PollStatsView, error) {
	if _, err := s.repo.GetPoll(ctx, pollID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	stats, err := s.repo.GetPollStats(ctx, pollID)
	if err != nil {
		return nil, err
	}

	view := &PollStatsView{PollStats: *stats}
	if s.rooms != nil {
		view.Observers = s.rooms.RoomSize(pollID)
	}
	return view, nil
}

// ShareQR renders a PNG QR code pointing at the poll's voting page
func (s *PollService) ShareQR(ctx context.Context, pollID string) ([]byte, error) {
	if _, err := s.repo.GetPoll(ctx, pollID); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrPollNotFound
		}
		return nil, err
	}

	url := strings.TrimRight(s.baseURL, "/") + "/polls/" + pollID
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode QR code")
	}
	return png, nil
}
