package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"facture-backend/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticateInjectsAccountID(t *testing.T) {
	token, err := auth.GenerateToken("test-secret", 7, "owner@atelier.fr")
	require.NoError(t, err)

	var gotID int64
	handler := Authenticate("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = AccountID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotID)
}

func TestAuthenticateRejectsMissingToken(t *testing.T) {
	handler := Authenticate("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("other-secret", 7, "owner@atelier.fr")
	require.NoError(t, err)

	handler := Authenticate("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
