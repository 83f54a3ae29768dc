package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("frijol123"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewManager(Config{
		JWTSecret:     "test-secret",
		JWTExpiration: 5,
		APIKeys:       []string{"key-a", "key-b"},
		Users:         []User{{Username: "agronomo", PasswordHash: string(hash), Role: "operator"}},
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager(t)

	token, err := m.GenerateToken("agronomo", "operator")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agronomo", claims.Username)
	assert.Equal(t, "operator", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	m := newTestManager(t)
	token, err := m.GenerateToken("agronomo", "operator")
	require.NoError(t, err)

	other := NewManager(Config{JWTSecret: "other", JWTExpiration: 5})
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateAPIKey(t *testing.T) {
	m := newTestManager(t)
	assert.True(t, m.ValidateAPIKey("key-b"))
	assert.False(t, m.ValidateAPIKey("key-c"))
	assert.False(t, m.ValidateAPIKey(""))
}

func TestAuthenticate(t *testing.T) {
	m := newTestManager(t)

	role, err := m.Authenticate("agronomo", "frijol123")
	require.NoError(t, err)
	assert.Equal(t, "operator", role)

	_, err = m.Authenticate("agronomo", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = m.Authenticate("nobody", "frijol123")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMiddleware(t *testing.T) {
	m := newTestManager(t)
	token, err := m.GenerateToken("agronomo", "operator")
	require.NoError(t, err)

	var seen Principal
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header map[string]string
		want   int
		method string
	}{
		{name: "no credentials", want: http.StatusUnauthorized},
		{name: "bad scheme", header: map[string]string{"Authorization": "Token abc"}, want: http.StatusUnauthorized},
		{name: "bad token", header: map[string]string{"Authorization": "Bearer abc"}, want: http.StatusUnauthorized},
		{name: "bad key", header: map[string]string{"X-API-Key": "nope"}, want: http.StatusUnauthorized},
		{name: "jwt", header: map[string]string{"Authorization": "Bearer " + token}, want: http.StatusNoContent, method: "jwt"},
		{name: "api key", header: map[string]string{"X-API-Key": "key-a"}, want: http.StatusNoContent, method: "api_key"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = Principal{}
			req := httptest.NewRequest(http.MethodPost, "/api/monitor/start", nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)
			assert.Equal(t, tc.method, seen.Method)
		})
	}
}
