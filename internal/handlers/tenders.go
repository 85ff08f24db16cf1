package handlers

import (
	"net/http"
	"time"

	"tenderlink/internal/apperr"
	"tenderlink/internal/auth"
	"tenderlink/internal/service"
	"tenderlink/models"
)

// Форматы дедлайна по порядку; значения без зоны читаются как UTC
var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// parseDeadline принимает RFC 3339 и более короткие формы дат
func parseDeadline(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range deadlineLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

type createTenderRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	Deadline    string `json:"deadline" validate:"required"`
}

type createTenderResponse struct {
	successResponse
	TenderID int `json:"tenderId"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type statusResponse struct {
	successResponse
	Status string `json:"status"`
}

// CreateTender обрабатывает POST /api/tenders
func (h *Handler) CreateTender(w http.ResponseWriter, r *http.Request) {
	var req createTenderRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		h.WriteError(w, r, apperr.ValidationFields("invalid request body", map[string]string{
			"deadline": "must be a date such as 2006-01-02 or 2006-01-02T15:04:05Z",
		}))
		return
	}

	session, _ := auth.SessionFromContext(r.Context())
	tender, err := h.svc.CreateTender(r.Context(), session, service.CreateTenderInput{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
	})
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createTenderResponse{
		successResponse: successResponse{Success: true, Message: "Tender created successfully"},
		TenderID:        tender.ID,
	})
}

// GetTender обрабатывает GET /api/tenders/{tenderId}
func (h *Handler) GetTender(w http.ResponseWriter, r *http.Request) {
	tenderID, err := pathID(r, "tenderId")
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	session, _ := auth.SessionFromContext(r.Context())
	tender, err := h.svc.GetTender(r.Context(), session, tenderID)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tender)
}

// ListMyTenders возвращает тендеры текущего пользователя
func (h *Handler) ListMyTenders(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	tenders, err := h.svc.ListMyTenders(r.Context(), session)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// ListPublishedTenders возвращает опубликованные тендеры со ставками текущего участника
func (h *Handler) ListPublishedTenders(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	tenders, err := h.svc.ListPublishedTenders(r.Context(), session)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// ListAllTenders возвращает все тендеры для администратора
func (h *Handler) ListAllTenders(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.SessionFromContext(r.Context())
	tenders, err := h.svc.ListAllTenders(r.Context(), session)
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// UpdateTenderStatus обрабатывает PATCH /api/tenders/{tenderId}/status
func (h *Handler) UpdateTenderStatus(w http.ResponseWriter, r *http.Request) {
	tenderID, err := pathID(r, "tenderId")
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
	status, err := h.svc.UpdateTenderStatus(r.Context(), session, tenderID, models.TenderStatus(req.Status))
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		successResponse: successResponse{Success: true, Message: "Tender status updated successfully"},
		Status:          string(status),
	})
}
