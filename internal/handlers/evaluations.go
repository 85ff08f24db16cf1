package handlers

import (
	"net/http"

	"tenderlink/internal/auth"
)

type scoreBidRequest struct {
	BidID int  `json:"bidId" validate:"required,gt=0"`
	Score *int `json:"score" validate:"required,min=0,max=10"`
}

type scoreBidResponse struct {
	successResponse
	EvaluationID int `json:"evaluationId"`
}

// ScoreBid обрабатывает POST /api/evaluations
func (h *Handler) ScoreBid(w http.ResponseWriter, r *http.Request) {
	var req scoreBidRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	evaluation, err := h.svc.ScoreBid(r.Context(), session, req.BidID, *req.Score)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, scoreBidResponse{
		successResponse: successResponse{Success: true, Message: "Bid evaluated successfully"},
		EvaluationID:    evaluation.ID,
	})
}

// ListEvaluationsForBid обрабатывает GET /api/evaluations/bid/{bidId}
func (h *Handler) ListEvaluationsForBid(w http.ResponseWriter, r *http.Request) {
	bidID, err := pathID(r, "bidId")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	evaluations, err := h.svc.ListEvaluationsForBid(r.Context(), session, bidID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evaluations)
}
