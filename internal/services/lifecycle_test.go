package services_test

import (
	"testing"
	"time"

	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/services"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

// TestResolveStatus_NoSchedule tests that a poll without a schedule is always active
func TestResolveStatus_NoSchedule(t *testing.T) {
	lifecycle := services.NewLifecycle()
	poll := &models.Poll{ID: "p1"}

	status := lifecycle.ResolveStatus(poll, time.Now())
	if status != models.StatusActive {
		t.Errorf("expected active, got %s", status)
	}
}

// TestResolveStatus_BeforeStart tests that a poll is upcoming before starts_at
func TestResolveStatus_BeforeStart(t *testing.T) {
	lifecycle := services.NewLifecycle()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:       "p1",
		StartsAt: timePtr(now.Add(time.Hour)),
	}

	if status := lifecycle.ResolveStatus(poll, now); status != models.StatusUpcoming {
		t.Errorf("expected upcoming, got %s", status)
	}
}

// TestResolveStatus_AtStart tests that a poll becomes active at exactly starts_at
func TestResolveStatus_AtStart(t *testing.T) {
	lifecycle := services.NewLifecycle()
	startsAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:       "p1",
		StartsAt: timePtr(startsAt),
		EndsAt:   timePtr(startsAt.Add(time.Hour)),
	}

	if status := lifecycle.ResolveStatus(poll, startsAt); status != models.StatusActive {
		t.Errorf("expected active at starts_at, got %s", status)
	}
}

// TestResolveStatus_AtEnd tests that a poll is completed at exactly ends_at
func TestResolveStatus_AtEnd(t *testing.T) {
	lifecycle := services.NewLifecycle()
	endsAt := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:     "p1",
		EndsAt: timePtr(endsAt),
	}

	if status := lifecycle.ResolveStatus(poll, endsAt); status != models.StatusCompleted {
		t.Errorf("expected completed at ends_at, got %s", status)
	}

	if status := lifecycle.ResolveStatus(poll, endsAt.Add(-time.Nanosecond)); status != models.StatusActive {
		t.Errorf("expected active just before ends_at, got %s", status)
	}
}

// TestResolveStatus_AfterEnd tests that a poll stays completed after ends_at
func TestResolveStatus_AfterEnd(t *testing.T) {
	lifecycle := services.NewLifecycle()
	endsAt := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:       "p1",
		StartsAt: timePtr(endsAt.Add(-time.Hour)),
		EndsAt:   timePtr(endsAt),
	}

	if status := lifecycle.ResolveStatus(poll, endsAt.Add(24*time.Hour)); status != models.StatusCompleted {
		t.Errorf("expected completed after ends_at, got %s", status)
	}
}

// TestResolveStatus_OnlyStart tests that a poll with only starts_at never completes
func TestResolveStatus_OnlyStart(t *testing.T) {
	lifecycle := services.NewLifecycle()
	startsAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:       "p1",
		StartsAt: timePtr(startsAt),
	}

	if status := lifecycle.ResolveStatus(poll, startsAt.Add(1000*time.Hour)); status != models.StatusActive {
		t.Errorf("expected active long after starts_at, got %s", status)
	}
}

// TestCanSeeResults_Immediate tests that immediate visibility always allows reads
func TestCanSeeResults_Immediate(t *testing.T) {
	lifecycle := services.NewLifecycle()
	poll := &models.Poll{
		ID:               "p1",
		ResultVisibility: models.VisibilityImmediate,
	}

	now := time.Now()
	if !lifecycle.CanSeeResults(poll, false, now) {
		t.Error("expected non-voter to see immediate results")
	}
	if !lifecycle.CanSeeResults(poll, true, now) {
		t.Error("expected voter to see immediate results")
	}
}

// TestCanSeeResults_AfterVote tests that after_vote visibility flips per voter
func TestCanSeeResults_AfterVote(t *testing.T) {
	lifecycle := services.NewLifecycle()
	poll := &models.Poll{
		ID:               "p1",
		ResultVisibility: models.VisibilityAfterVote,
	}

	now := time.Now()
	if lifecycle.CanSeeResults(poll, false, now) {
		t.Error("expected non-voter to be denied")
	}
	if !lifecycle.CanSeeResults(poll, true, now) {
		t.Error("expected voter to see results after voting")
	}
}

// TestCanSeeResults_AfterClose tests that after_close gates on poll completion,
// and that completion opens results even for non-voters
func TestCanSeeResults_AfterClose(t *testing.T) {
	lifecycle := services.NewLifecycle()
	endsAt := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:               "p1",
		EndsAt:           timePtr(endsAt),
		ResultVisibility: models.VisibilityAfterClose,
	}

	before := endsAt.Add(-time.Minute)
	if lifecycle.CanSeeResults(poll, true, before) {
		t.Error("expected voter to be denied while poll is active")
	}

	after := endsAt.Add(time.Minute)
	if !lifecycle.CanSeeResults(poll, false, after) {
		t.Error("expected non-voter to see results after close")
	}
}

// TestCanSeeResults_AtTime tests the scheduled reveal boundary
func TestCanSeeResults_AtTime(t *testing.T) {
	lifecycle := services.NewLifecycle()
	visibleAt := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	poll := &models.Poll{
		ID:               "p1",
		ResultVisibility: models.VisibilityAtTime,
		VisibleAt:        timePtr(visibleAt),
	}

	if lifecycle.CanSeeResults(poll, true, visibleAt.Add(-time.Second)) {
		t.Error("expected results hidden before visible_at")
	}
	if !lifecycle.CanSeeResults(poll, false, visibleAt) {
		t.Error("expected results visible at exactly visible_at")
	}
}

// TestCanSeeResults_AtTimeMissing tests that at_time with no timestamp denies everyone
func TestCanSeeResults_AtTimeMissing(t *testing.T) {
	lifecycle := services.NewLifecycle()
	poll := &models.Poll{
		ID:               "p1",
		ResultVisibility: models.VisibilityAtTime,
	}

	if lifecycle.CanSeeResults(poll, true, time.Now()) {
		t.Error("expected results hidden when visible_at is unset")
	}
}
