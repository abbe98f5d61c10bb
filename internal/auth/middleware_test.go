package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/quiz-session/internal/auth/jwt"
)

func newRouter(tokens *jwt.Manager) http.Handler {
	r := chi.NewRouter()
	r.With(RequireSession(tokens, zerolog.Nop())).Get("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = w.Write([]byte(claims.SessionID))
	})
	return r
}

func TestRequireSession(t *testing.T) {
	tokens := jwt.NewManager(jwt.TokenConfig{Secret: []byte("secret")})
	token, err := tokens.Issue("abc")
	require.NoError(t, err)
	router := newRouter(tokens)

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"bearer", "/sessions/abc", "Bearer " + token, http.StatusOK},
		{"query token", "/sessions/abc?token=" + token, "", http.StatusOK},
		{"missing", "/sessions/abc", "", http.StatusUnauthorized},
		{"malformed header", "/sessions/abc", "Token " + token, http.StatusUnauthorized},
		{"bad token", "/sessions/abc", "Bearer nope", http.StatusUnauthorized},
		{"other session", "/sessions/xyz", "Bearer " + token, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "abc", rec.Body.String())
			}
		})
	}
}
