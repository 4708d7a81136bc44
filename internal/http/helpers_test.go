package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"facture-backend/internal/domain"
	"facture-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDomainErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", repository.ErrNotFound, http.StatusNotFound},
		{"invalid quantity", domain.ErrInvalidQuantity, http.StatusBadRequest},
		{"invalid rate", domain.ErrInvalidRate, http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"missing reason", domain.ErrMissingReason, http.StatusBadRequest},
		{"invalid discount", domain.ErrInvalidDiscount, http.StatusBadRequest},
		{"invalid transition", domain.ErrInvalidTransition, http.StatusConflict},
		{"invalid state", domain.ErrInvalidInvoiceState, http.StatusConflict},
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusConflict},
		{"overpayment", domain.ErrOverpaymentNotAllowed, http.StatusConflict},
		{"concurrent modification", domain.ErrConcurrentModification, http.StatusConflict},
		{"duplicate", repository.ErrDuplicate, http.StatusConflict},
		{"rendering failed", domain.ErrRenderingFailed, http.StatusBadGateway},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, fmt.Errorf("op: %w", tc.err))
			assert.Equal(t, tc.status, rec.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body, "error")
		})
	}
}

func TestParseDate(t *testing.T) {
	parsed, err := parseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", parsed.Format("2006-01-02"))

	_, err = parseDate("15/03/2026")
	require.Error(t, err)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-1", "abc"} {
		_, err := parseID(raw)
		assert.Error(t, err, raw)
	}
}
