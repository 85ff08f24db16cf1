package handlers

import (
	"net/http"

	"tenderlink/internal/apperr"
	"tenderlink/internal/auth"
	"tenderlink/internal/service"
	"tenderlink/models"
)

type loginRequest struct {
	Role     models.Role `json:"role" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required"`
}

type loginResponse struct {
	Token  string      `json:"token"`
	Role   models.Role `json:"role"`
	UserID int         `json:"userId"`
	Name   string      `json:"name"`
}

type signupRequest struct {
	Name     string      `json:"name" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required"`
}

type signupResponse struct {
	successResponse
	User *models.User `json:"user"`
}

type validateTokenResponse struct {
	Valid  bool        `json:"valid"`
	UserID int         `json:"userId"`
	Role   models.Role `json:"role"`
}

// Login обрабатывает POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	user, err := h.svc.Login(r.Context(), service.LoginInput{
		Role:     req.Role,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.WriteError(w, r, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		h.WriteError(w, r, apperr.Internal("generate token", err))
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:  token,
		Role:   user.Role,
		UserID: user.ID,
		Name:   user.Name,
	})
}

// Signup обрабатывает POST /api/auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.WriteError(w, r, err)
		return
	}

	user, err := h.svc.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, signupResponse{
		successResponse: successResponse{Success: true, Message: "User registered successfully"},
		User:            user,
	})
}

// ValidateToken обрабатывает GET /api/auth/validate-token и возвращает данные сессии
func (h *Handler) ValidateToken(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		h.WriteError(w, r, apperr.Unauthenticated("authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, validateTokenResponse{
		Valid:  true,
		UserID: session.UserID,
		Role:   session.Role,
	})
}
