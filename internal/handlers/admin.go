package handlers

import (
	"net/http"

	"github.com/abrezinsky/outletplay/internal/services"
)

// ==================== Prizes ====================

func (h *Handlers) handleGetPrizes(w http.ResponseWriter, r *http.Request) {
	prizes, err := h.Prizes.ListPrizes(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, prizes)
}

func (h *Handlers) handleCreatePrize(w http.ResponseWriter, r *http.Request) {
	var req PrizeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	id, err := h.Prizes.CreatePrize(r.Context(), req.toPrize())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondCreated(w, PrizeCreatedResponse{ID: id})
}

func (h *Handlers) handleUpdatePrize(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var req PrizeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.Prizes.UpdatePrize(r.Context(), id, req.toPrize()); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondSuccess(w, "Prize updated")
}

func (h *Handlers) handleSeedPrizes(w http.ResponseWriter, r *http.Request) {
	inserted, err := h.Prizes.SeedDefaultPrizes(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, map[string]int{"inserted": inserted})
}

// toPrize converts the request; a missing active flag means active
func (req PrizeRequest) toPrize() services.Prize {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return services.Prize{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Active:      active,
	}
}

// ==================== Game ====================

func (h *Handlers) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Game.DailySummary(r.Context(), h.Now())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, summary)
}
