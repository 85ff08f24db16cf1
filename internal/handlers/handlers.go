package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tenderlink/internal/auth"
	"tenderlink/internal/service"
)

// Handler переводит HTTP запросы в вызовы сервиса
type Handler struct {
	svc      *service.Service
	tokens   *auth.TokenManager
	log      *zap.Logger
	validate *validator.Validate
}

// NewHandler создает новый Handler
func NewHandler(svc *service.Service, tokens *auth.TokenManager, log *zap.Logger) *Handler {
	return &Handler{
		svc:      svc,
		tokens:   tokens,
		log:      log,
		validate: newValidator(),
	}
}

// HealthCheck отвечает без авторизации, что сервер работает
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Server is running",
	})
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
