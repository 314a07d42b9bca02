package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/current", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthService_ValidateToken(t *testing.T) {
	srv := newAuthServer(t, http.StatusOK, `{"id":"64b7f0c2a1b2c3d4e5f60718","login":"ana","enabled":true}`)

	user, err := NewAuthService(srv.URL+"/").ValidateToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", user.ID)
	assert.Equal(t, "ana", user.Login)
}

func TestAuthService_ValidateToken_Rejected(t *testing.T) {
	srv := newAuthServer(t, http.StatusUnauthorized, `{}`)

	_, err := NewAuthService(srv.URL).ValidateToken(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ValidateToken_Disabled(t *testing.T) {
	srv := newAuthServer(t, http.StatusOK, `{"id":"x","enabled":false}`)

	_, err := NewAuthService(srv.URL).ValidateToken(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUserDisabled)
}
