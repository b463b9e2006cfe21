package handlers

import (
	"net/http"
)

// handleGameStatus returns the caller's eligibility for today
func (h *Handlers) handleGameStatus(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	status, err := h.Game.GetStatus(r.Context(), caller.UserID, h.Now())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, status)
}

// handlePlay scratches one card for the caller
func (h *Handlers) handlePlay(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.Game.Play(r.Context(), caller.UserID, h.Now())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, result)
}

// handleRewards lists every prize the caller has won
func (h *Handlers) handleRewards(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	rewards, err := h.Game.ListRewards(r.Context(), caller.UserID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondOK(w, rewards)
}

// handleRewardQR renders the voucher of one of the caller's wins as a PNG
func (h *Handlers) handleRewardQR(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	png, err := h.Game.RewardQRCode(r.Context(), caller.UserID, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-cache")
	w.Write(png)
}
