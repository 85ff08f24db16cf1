package handlers

import (
	"net/http"

	"tenderlink/internal/auth"
	"tenderlink/models"
)

type placeBidRequest struct {
	TenderID int     `json:"tenderId" validate:"required,gt=0"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

type placeBidResponse struct {
	successResponse
	BidID int `json:"bidId"`
}

// PlaceBid обрабатывает POST /api/bids
func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	var req placeBidRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	bid, err := h.svc.PlaceBid(r.Context(), session, req.TenderID, req.Amount)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, placeBidResponse{
		successResponse: successResponse{Success: true, Message: "Bid placed successfully"},
		BidID:           bid.ID,
	})
}

// ListBidsForTender обрабатывает GET /api/bids/tender/{tenderId}
func (h *Handler) ListBidsForTender(w http.ResponseWriter, r *http.Request) {
	tenderID, err := pathID(r, "tenderId")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	bids, err := h.svc.ListBidsForTender(r.Context(), session, tenderID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

func (h *Handler) ListMyBids(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	bids, err := h.svc.ListMyBids(r.Context(), session)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// UpdateBidStatus обрабатывает PATCH /api/bids/{bidId}/status
func (h *Handler) UpdateBidStatus(w http.ResponseWriter, r *http.Request) {
	bidID, err := pathID(r, "bidId")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	var req statusRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	status, err := h.svc.UpdateBidStatus(r.Context(), session, bidID, models.BidStatus(req.Status))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		successResponse: successResponse{Success: true, Message: "Bid status updated successfully"},
		Status:          string(status),
	})
}
