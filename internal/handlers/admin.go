package handlers

import (
	"net/http"

	"github.com/votely/votely/internal/models"
)

// handleCreatePoll creates a poll with its options
func (h *Handlers) handleCreatePoll(w http.ResponseWriter, r *http.Request) {
	var req PollCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	options := make([]models.Option, 0, len(req.Options))
	for _, label := range req.Options {
		options = append(options, models.Option{Label: label})
	}

	choiceRule := models.ChoiceRule(req.ChoiceRule)
	if req.ChoiceRule == "" {
		choiceRule = models.ChoiceSingle
	}

	poll, err := h.Polls.CreatePoll(r.Context(), &models.Poll{
		Question:           req.Question,
		Options:            options,
		ChoiceRule:         choiceRule,
		MaxSelections:      req.MaxSelections,
		StartsAt:           req.StartsAt,
		EndsAt:             req.EndsAt,
		ResultVisibility:   models.ResultVisibility(req.ResultVisibility),
		VisibleAt:          req.VisibleAt,
		TrendBucketSeconds: req.TrendBucketSeconds,
		ShuffleOptions:     req.ShuffleOptions,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondCreated(w, poll)
}

// handleListPolls lists all polls with their ballot counts
func (h *Handlers) handleListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.Polls.ListPolls(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, polls)
}

// handleGetPollStats returns submission and observer stats for a poll
func (h *Handlers) handleGetPollStats(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	stats, err := h.Polls.GetStats(r.Context(), pollID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, stats)
}
