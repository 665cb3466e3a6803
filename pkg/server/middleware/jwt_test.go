package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func protected(t *testing.T, auth *JWTAuthenticator) http.Handler {
	t.Helper()
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(Subject(r.Context())))
	}))
}

func serve(handler http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/runs", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestMiddleware_ValidToken(t *testing.T) {
	token, err := IssueToken(secret, "ci-bot", time.Minute)
	require.NoError(t, err)

	w := serve(protected(t, NewJWTAuthenticator(secret)), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ci-bot", w.Body.String())
}

func TestMiddleware_Rejections(t *testing.T) {
	expired, err := IssueToken(secret, "ci-bot", -time.Minute)
	require.NoError(t, err)
	wrongKey, err := IssueToken([]byte("other"), "ci-bot", time.Minute)
	require.NoError(t, err)
	noIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "ci-bot"}).SignedString(secret)
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Issuer: issuer}).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
		message       string
	}{
		{"missing header", "", "Authorization missing"},
		{"wrong scheme", "Token token=\"abc\"", "Malformed authorization header"},
		{"empty bearer", "Bearer ", "Malformed authorization header"},
		{"garbage", "Bearer not-a-jwt", "Invalid token"},
		{"expired", "Bearer " + expired, "Token expired"},
		{"wrong key", "Bearer " + wrongKey, "Invalid token"},
		{"missing issuer", "Bearer " + noIssuer, "Invalid token"},
		{"wrong algorithm", "Bearer " + hs512, "Invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(protected(t, NewJWTAuthenticator(secret)), tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.message)
			assert.Contains(t, w.Body.String(), `"code":"unauthorized"`)
		})
	}
}

func TestMiddleware_NoSecretConfigured(t *testing.T) {
	token, err := IssueToken(secret, "ci-bot", time.Minute)
	require.NoError(t, err)

	w := serve(protected(t, NewJWTAuthenticator(nil)), "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken(nil, "ci-bot", time.Minute)
	assert.Error(t, err)
}

func TestSubjectWithoutToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, Subject(req.Context()))
}
