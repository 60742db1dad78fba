package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// handleGetPoll returns a poll definition with its derived status
func (h *Handlers) handleGetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	poll, err := h.Polls.GetPoll(r.Context(), pollID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondOK(w, poll)
}

// handleShareQR serves a PNG QR code linking to the poll's voting page
func (h *Handlers) handleShareQR(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	png, err := h.Polls.ShareQR(r.Context(), pollID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// handleObserve joins the caller to the poll's live results room.
// Observers without an explicit id get a generated one, which keeps
// reconnecting tabs distinct while repeated joins stay idempotent.
func (h *Handlers) handleObserve(w http.ResponseWriter, r *http.Request) {
	pollID, err := pollIDParam(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if _, err := h.Polls.GetPoll(r.Context(), pollID); err != nil {
		respondError(w, err)
		return
	}

	observerID := r.URL.Query().Get("observer")
	if observerID == "" {
		observerID = uuid.NewString()
	}

	h.Hub.ServeWs(w, r, pollID, observerID)
}
