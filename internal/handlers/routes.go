package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tenderlink/internal/apperr"
	"tenderlink/internal/auth"
	"tenderlink/models"
)

// NewRouter монтирует все эндпоинты под /api; без токена ответ 401 раньше проверки роли
func NewRouter(h *Handler, mw *auth.Middleware, corsOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.WriteError(w, r, apperr.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health-check", h.HealthCheck)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/signup", h.Signup)
			r.With(mw.Authenticate).Get("/validate-token", h.ValidateToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate)

			// тендеры
			r.Route("/tenders", func(r chi.Router) {
				r.With(mw.RequireRole(models.RoleBuyer)).Post("/", h.CreateTender)
				r.Get("/my-tenders", h.ListMyTenders)
				r.Get("/published", h.ListPublishedTenders)
				r.With(mw.RequireRole(models.RoleAdmin)).Get("/admin/all-tenders", h.ListAllTenders)
				r.Get("/{tenderId}", h.GetTender)
				r.With(mw.RequireRole(models.RoleAdmin)).Patch("/{tenderId}/status", h.UpdateTenderStatus)
			})

			// предложения (bids)
			r.Route("/bids", func(r chi.Router) {
				r.With(mw.RequireRole(models.RoleBidder)).Post("/", h.PlaceBid)
				r.With(mw.RequireRole(models.RoleBidder)).Get("/my-bids", h.ListMyBids)
				r.Get("/tender/{tenderId}", h.ListBidsForTender)
				r.With(mw.RequireRole(models.RoleAdmin)).Patch("/{bidId}/status", h.UpdateBidStatus)
			})

			r.Route("/evaluations", func(r chi.Router) {
				r.With(mw.RequireRole(models.RoleEvaluator)).Post("/", h.ScoreBid)
				r.Get("/bid/{bidId}", h.ListEvaluationsForBid)
			})

			r.Route("/winners", func(r chi.Router) {
				r.With(mw.RequireRole(models.RoleAdmin)).Post("/", h.SelectWinner)
				r.With(mw.RequireRole(models.RoleAdmin)).Get("/", h.ListWinners)
				r.Get("/tender/{tenderId}", h.GetWinnerForTender)
			})
		})
	})

	return r
}

// requestLogger пишет одну строку zap на каждый запрос
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("HTTP request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("remote_addr", r.RemoteAddr),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
