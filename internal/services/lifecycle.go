package services

import (
	"time"

	"github.com/votely/votely/internal/models"
)

// Lifecycle derives a poll's temporal state and result visibility from its
// schedule. All methods are pure functions of their inputs; callers pass the
// current time explicitly and must re-evaluate on every request.
type Lifecycle struct{}

// NewLifecycle creates a Lifecycle resolver
func NewLifecycle() *Lifecycle {
	return &Lifecycle{}
}

// ResolveStatus returns the poll's status at the given instant.
// A poll with no schedule is always active; the end boundary is inclusive
// (the poll is completed at exactly endsAt).
func (Lifecycle) ResolveStatus(poll *models.Poll, now time.Time) models.PollStatus {
	if poll.StartsAt != nil && now.Before(*poll.StartsAt) {
		return models.StatusUpcoming
	}
	if poll.EndsAt != nil && !now.Before(*poll.EndsAt) {
		return models.StatusCompleted
	}
	return models.StatusActive
}

// CanSeeResults reports whether a caller may read the poll's results now
func (l Lifecycle) CanSeeResults(poll *models.Poll, hasVoted bool, now time.Time) bool {
	switch poll.ResultVisibility {
	case models.VisibilityImmediate:
		return true
	case models.VisibilityAfterVote:
		return hasVoted
	case models.VisibilityAfterClose:
		return l.ResolveStatus(poll, now) == models.StatusCompleted
	case models.VisibilityAtTime:
		return poll.VisibleAt != nil && !now.Before(*poll.VisibleAt)
	default:
		return false
	}
}
