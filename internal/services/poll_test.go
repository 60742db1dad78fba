package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/votely/votely/internal/clock"
	"github.com/votely/votely/internal/logger"
	"github.com/votely/votely/internal/models"
	"github.com/votely/votely/internal/services"
	"github.com/votely/votely/internal/testutil"
)

func setupPollService(t *testing.T) (*services.PollService, *clock.Fake) {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	pollSvc := services.NewPollService(log, repo, services.NewLifecycle(), clk, "http://test.local")
	return pollSvc, clk
}

// TestCreatePoll_AssignsIDsAndPositions tests basic creation
func TestCreatePoll_AssignsIDsAndPositions(t *testing.T) {
	pollSvc, _ := setupPollService(t)
	ctx := context.Background()

	poll, err := pollSvc.CreatePoll(ctx, &models.Poll{
		Question:   "Best flavor?",
		ChoiceRule: models.ChoiceSingle,
		Options:    []models.Option{{Label: "Vanilla"}, {Label: "Chocolate"}},
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	if poll.ID == "" {
		t.Error("expected a poll ID to be assigned")
	}
	for i, opt := range poll.Options {
		if opt.ID == "" {
			t.Errorf("expected option %d to get an ID", i)
		}
		if opt.Position != i {
			t.Errorf("expected option %d at position %d, got %d", i, i, opt.Position)
		}
	}
	if poll.MaxSelections != 1 {
		t.Errorf("expected single-choice to force max_selections=1, got %d", poll.MaxSelections)
	}
	if poll.ResultVisibility != models.VisibilityImmediate {
		t.Errorf("expected default visibility immediate, got %s", poll.ResultVisibility)
	}
	if poll.TrendBucketSeconds != 60 {
		t.Errorf("expected default trend bucket 60s, got %d", poll.TrendBucketSeconds)
	}
}

// TestCreatePoll_ValidationFailures tests the rejection paths
func TestCreatePoll_ValidationFailures(t *testing.T) {
	pollSvc, _ := setupPollService(t)
	ctx := context.Background()

	two := []models.Option{{Label: "A"}, {Label: "B"}}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	cases := []struct {
		name string
		poll *models.Poll
	}{
		{"empty question", &models.Poll{Question: "  ", ChoiceRule: models.ChoiceSingle, Options: two}},
		{"one option", &models.Poll{Question: "Q?", ChoiceRule: models.ChoiceSingle, Options: two[:1]}},
		{"blank label", &models.Poll{Question: "Q?", ChoiceRule: models.ChoiceSingle, Options: []models.Option{{Label: "A"}, {Label: " "}}}},
		{"unknown rule", &models.Poll{Question: "Q?", ChoiceRule: "ranked", Options: two}},
		{"multiple without limit", &models.Poll{Question: "Q?", ChoiceRule: models.ChoiceMultiple, Options: two}},
		{"unknown visibility", &models.Poll{Question: "Q?", ChoiceRule: models.ChoiceSingle, ResultVisibility: "secret", Options: two}},
		{"at_time without timestamp", &models.Poll{Question: "Q?", ChoiceRule: models.ChoiceSingle, ResultVisibility: models.VisibilityAtTime, Options: two}},
		{"ends before starts", &models.Poll{Question: "Q?", ChoiceRule: models.ChoiceSingle, StartsAt: &later, EndsAt: &now, Options: two}},
	}

	for _, tc := range cases {
		if _, err := pollSvc.CreatePoll(ctx, tc.poll); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
}

// TestGetPoll_DerivesStatus tests that the view carries a freshly derived status
func TestGetPoll_DerivesStatus(t *testing.T) {
	pollSvc, clk := setupPollService(t)
	ctx := context.Background()

	endsAt := clk.Now().Add(time.Hour)
	poll, err := pollSvc.CreatePoll(ctx, &models.Poll{
		Question:   "Q?",
		ChoiceRule: models.ChoiceSingle,
		EndsAt:     &endsAt,
		Options:    []models.Option{{Label: "A"}, {Label: "B"}},
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	view, err := pollSvc.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if view.Status != models.StatusActive {
		t.Errorf("expected active, got %s", view.Status)
	}

	clk.Advance(2 * time.Hour)
	view, err = pollSvc.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	if view.Status != models.StatusCompleted {
		t.Errorf("expected completed after ends_at, got %s", view.Status)
	}
}

// TestGetPoll_NotFound tests the unknown-poll path
func TestGetPoll_NotFound(t *testing.T) {
	pollSvc, _ := setupPollService(t)

	_, err := pollSvc.GetPoll(context.Background(), "no-such-poll")
	if err != services.ErrPollNotFound {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}
}

// TestGetPoll_ShuffleKeepsOptionIdentity tests that shuffling reorders the
// options without altering the option set
func TestGetPoll_ShuffleKeepsOptionIdentity(t *testing.T) {
	pollSvc, _ := setupPollService(t)
	ctx := context.Background()

	poll, err := pollSvc.CreatePoll(ctx, &models.Poll{
		Question:       "Q?",
		ChoiceRule:     models.ChoiceSingle,
		ShuffleOptions: true,
		Options: []models.Option{
			{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"}, {Label: "E"},
		},
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	expected := make(map[string]string, len(poll.Options))
	for _, opt := range poll.Options {
		expected[opt.ID] = opt.Label
	}

	for i := 0; i < 10; i++ {
		view, err := pollSvc.GetPoll(ctx, poll.ID)
		if err != nil {
			t.Fatalf("GetPoll failed: %v", err)
		}
		if len(view.Options) != len(expected) {
			t.Fatalf("expected %d options, got %d", len(expected), len(view.Options))
		}
		for _, opt := range view.Options {
			if expected[opt.ID] != opt.Label {
				t.Errorf("option %s changed label to %q", opt.ID, opt.Label)
			}
		}
	}
}

// TestListPolls_CountsBallots tests the admin listing
func TestListPolls_CountsBallots(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	lifecycle := services.NewLifecycle()
	pollSvc := services.NewPollService(log, repo, lifecycle, clk, "http://test.local")
	votingSvc := services.NewVotingService(log, repo, lifecycle, services.NewReceiptIssuer(), clk)
	ctx := context.Background()

	poll := createTestPoll(t, pollSvc, models.ChoiceSingle, 1)
	votingSvc.SubmitVote(ctx, poll.ID, "v1", []string{poll.Options[0].ID})
	votingSvc.SubmitVote(ctx, poll.ID, "v2", []string{poll.Options[1].ID})

	polls, err := pollSvc.ListPolls(ctx)
	if err != nil {
		t.Fatalf("ListPolls failed: %v", err)
	}
	if len(polls) != 1 {
		t.Fatalf("expected 1 poll, got %d", len(polls))
	}
	if polls[0].TotalVotes != 2 {
		t.Errorf("expected 2 ballots in summary, got %d", polls[0].TotalVotes)
	}
}

// TestGetStats_ReportsBallotsAndObservers tests poll statistics
func TestGetStats_ReportsBallotsAndObservers(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	log := logger.New()
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	lifecycle := services.NewLifecycle()
	pollSvc := services.NewPollService(log, repo, lifecycle, clk, "http://test.local")
	votingSvc := services.NewVotingService(log, repo, lifecycle, services.NewReceiptIssuer(), clk)
	ctx := context.Background()

	poll := createTestPoll(t, pollSvc, models.ChoiceMultiple, 2)
	votingSvc.SubmitVote(ctx, poll.ID, "v1", []string{poll.Options[0].ID, poll.Options[1].ID})
	clk.Advance(time.Minute)
	votingSvc.SubmitVote(ctx, poll.ID, "v2", []string{poll.Options[2].ID})

	pollSvc.SetRoomCounter(staticRoomCounter(7))

	stats, err := pollSvc.GetStats(ctx, poll.ID)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}

	if stats.TotalBallots != 2 {
		t.Errorf("expected 2 ballots, got %d", stats.TotalBallots)
	}
	if stats.TotalSelections != 3 {
		t.Errorf("expected 3 selections, got %d", stats.TotalSelections)
	}
	if stats.FirstAcceptedAt == nil || stats.LastAcceptedAt == nil {
		t.Fatal("expected accepted-at range to be set")
	}
	if !stats.FirstAcceptedAt.Before(*stats.LastAcceptedAt) {
		t.Error("expected first accepted before last accepted")
	}
	if stats.Observers != 7 {
		t.Errorf("expected 7 observers, got %d", stats.Observers)
	}
}

// staticRoomCounter implements services.RoomCounter with a fixed size
type staticRoomCounter int

func (c staticRoomCounter) RoomSize(pollID string) int { return int(c) }

// TestGetStats_PollNotFound tests stats for an unknown poll
func TestGetStats_PollNotFound(t *testing.T) {
	pollSvc, _ := setupPollService(t)

	_, err := pollSvc.GetStats(context.Background(), "no-such-poll")
	if err != services.ErrPollNotFound {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}
}

// TestShareQR_RendersPNG tests that the share code is a PNG image
func TestShareQR_RendersPNG(t *testing.T) {
	pollSvc, _ := setupPollService(t)
	ctx := context.Background()

	poll, err := pollSvc.CreatePoll(ctx, &models.Poll{
		Question:   "Q?",
		ChoiceRule: models.ChoiceSingle,
		Options:    []models.Option{{Label: "A"}, {Label: "B"}},
	})
	if err != nil {
		t.Fatalf("CreatePoll failed: %v", err)
	}

	png, err := pollSvc.ShareQR(ctx, poll.ID)
	if err != nil {
		t.Fatalf("ShareQR failed: %v", err)
	}

	pngHeader := []byte{0x89, 'P', 'N', 'G'}
	if len(png) < 4 || !bytes.Equal(png[:4], pngHeader) {
		t.Error("expected PNG image data")
	}
}

// TestShareQR_PollNotFound tests the share code for an unknown poll
func TestShareQR_PollNotFound(t *testing.T) {
	pollSvc, _ := setupPollService(t)

	_, err := pollSvc.ShareQR(context.Background(), "no-such-poll")
	if err != services.ErrPollNotFound {
		t.Errorf("expected ErrPollNotFound, got %v", err)
	}
}
