package handlers

import (
	"net/http"

	"tenderlink/internal/auth"
)

type selectWinnerRequest struct {
	TenderID int `json:"tenderId" validate:"required,gt=0"`
	BidID    int `json:"bidId" validate:"required,gt=0"`
}

// SelectWinner обрабатывает POST /api/winners
func (h *Handler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	var req selectWinnerRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	winner, err := h.svc.SelectWinner(r.Context(), session, req.TenderID, req.BidID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, winner)
}

func (h *Handler) ListWinners(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	winners, err := h.svc.ListWinners(r.Context(), session)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

// GetWinnerForTender возвращает null, пока победитель не выбран
func (h *Handler) GetWinnerForTender(w http.ResponseWriter, r *http.Request) {
	tenderID, err := pathID(r, "tenderId")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	winner, err := h.svc.GetWinnerForTender(r.Context(), session, tenderID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, winner)
}
