package auth

import (
	"context"
	"net/http"
	"strings"

	"tenderlink/internal/apperr"
	"tenderlink/models"
)

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext returns the session stored by Authenticate.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(models.Session)
	return s, ok
}

// ErrorWriter renders a classified error as the HTTP response.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type Middleware struct {
	tokens   *TokenManager
	writeErr ErrorWriter
}

func NewMiddleware(tokens *TokenManager, writeErr ErrorWriter) *Middleware {
	return &Middleware{tokens: tokens, writeErr: writeErr}
}

// Authenticate requires a valid bearer token and stores the session in the
// request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.writeErr(w, r, apperr.Unauthenticated("missing Authorization header"))
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			m.writeErr(w, r, apperr.Unauthenticated("Authorization header must use the Bearer scheme"))
			return
		}

		session, err := m.tokens.ParseToken(tokenString)
		if err != nil {
			m.writeErr(w, r, apperr.Unauthenticated("invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole lets the request through only for the listed roles.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				m.writeErr(w, r, apperr.Unauthenticated("authentication required"))
				return
			}
			if _, ok := allowed[session.Role]; !ok {
				m.writeErr(w, r, apperr.Forbidden("role "+string(session.Role)+" may not perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
