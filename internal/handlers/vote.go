package handlers

import (
	"net/http"
)

// handleSubmitVote handles ballot submissions
func (h *Handlers) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req VoteSubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Voting.SubmitVote(r.Context(), pollID, req.VoterID, req.Selections)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, VoteResponse{
		PollID:     result.PollID,
		Selections: result.Selections,
		Receipt:    result.Receipt,
		Counts:     result.Tally.Counts,
		TotalVotes: result.Tally.TotalVotes,
	})
}

// handleGetBallotStatus returns the caller's own ballot, used to decide
// between showing the ballot form or the results view
func (h *Handlers) handleGetBallotStatus(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	status, err := h.Voting.GetBallotStatus(r.Context(), pollID, r.URL.Query().Get("voter"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, BallotStatusResponse{
		PollID:     status.Ballot.PollID,
		Selections: status.Ballot.Selections,
		AcceptedAt: status.Ballot.AcceptedAt,
		Receipt:    status.Receipt,
	})
}

// handleGetResults returns the poll's tally, subject to visibility gating
func (h *Handlers) handleGetResults(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	results, err := h.Results.GetResults(r.Context(), pollID, r.URL.Query().Get("voter"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, results)
}
