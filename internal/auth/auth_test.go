package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tenderlink/internal/apperr"
	"tenderlink/internal/auth"
	"tenderlink/models"
)

func writeErr(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), apperr.HTTPStatus(err))
}

func TestTokenRoundTrip(t *testing.T) {
	m := auth.NewTokenManager("secret", time.Hour)

	token, err := m.GenerateToken(42, models.RoleBidder)
	require.NoError(t, err)

	session, err := m.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, models.Session{UserID: 42, Role: models.RoleBidder}, session)
}

func TestParseTokenRejects(t *testing.T) {
	m := auth.NewTokenManager("secret", time.Hour)
	token, err := m.GenerateToken(1, models.RoleAdmin)
	require.NoError(t, err)

	_, err = auth.NewTokenManager("other-secret", time.Hour).ParseToken(token)
	require.Error(t, err)

	expired, err := auth.NewTokenManager("secret", -time.Minute).GenerateToken(1, models.RoleAdmin)
	require.NoError(t, err)
	_, err = m.ParseToken(expired)
	require.Error(t, err)

	_, err = m.ParseToken("not-a-token")
	require.Error(t, err)

	badRole, err := m.GenerateToken(1, models.Role("Superuser"))
	require.NoError(t, err)
	_, err = m.ParseToken(badRole)
	require.Error(t, err)
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	mw := auth.NewMiddleware(tokens, writeErr)

	var seen models.Session
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.SessionFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := mw.Authenticate(mw.RequireRole(models.RoleAdmin)(final))

	do := func(header string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusUnauthorized, do(""))
	require.Equal(t, http.StatusUnauthorized, do("Basic abc"))
	require.Equal(t, http.StatusUnauthorized, do("Bearer garbage"))

	bidder, err := tokens.GenerateToken(7, models.RoleBidder)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, do("Bearer "+bidder))

	admin, err := tokens.GenerateToken(1, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, do("Bearer "+admin))
	require.Equal(t, models.Session{UserID: 1, Role: models.RoleAdmin}, seen)
}

func TestRequireRoleWithoutSession(t *testing.T) {
	mw := auth.NewMiddleware(auth.NewTokenManager("secret", time.Hour), writeErr)
	h := mw.RequireRole(models.RoleBuyer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
