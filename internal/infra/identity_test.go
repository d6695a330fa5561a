package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityClient_PasswordLogin(t *testing.T) {
	uid := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secreto" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"expires_in":   3600,
			"token_type":   "bearer",
			"user":         map[string]string{"id": uid.String(), "email": body["email"]},
		})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "anon", "service", nil)

	s, err := c.PasswordLogin(context.Background(), "ana@donnildo.com", "secreto")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.AccessToken)
	assert.Equal(t, uid, s.User.ID)

	_, err = c.PasswordLogin(context.Background(), "ana@donnildo.com", "otra")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, CBClosed, c.Breaker().State())
}

func TestIdentityClient_InviteUsesServiceKey(t *testing.T) {
	uid := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/invite", r.URL.Path)
		assert.Equal(t, "http://app/login", r.URL.Query().Get("redirect_to"))
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": uid.String(), "email": "nuevo@donnildo.com"})
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "anon", "service", nil)
	u, err := c.InviteUser(context.Background(), "nuevo@donnildo.com", "http://app/login")
	require.NoError(t, err)
	assert.Equal(t, uid, u.ID)
}

func TestIdentityClient_ServerErrorsTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 2})
	c := NewIdentityClient(srv.URL, "anon", "service", cb)
	for i := 0; i < 2; i++ {
		assert.Error(t, c.RecoverPassword(context.Background(), "x@y.com", ""))
	}
	assert.ErrorIs(t, c.Logout(context.Background(), "tok"), ErrCircuitOpen)
}

func TestIdentityClient_NotConfigured(t *testing.T) {
	c := NewIdentityClient("", "", "", nil)
	assert.Error(t, c.Logout(context.Background(), "tok"))
}
