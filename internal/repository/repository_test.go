package repository

import (
	"fmt"
	"testing"

	"facture-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 200, normalizeLimit(0))
	assert.Equal(t, 200, normalizeLimit(-5))
	assert.Equal(t, 200, normalizeLimit(501))
	assert.Equal(t, 50, normalizeLimit(50))
	assert.Equal(t, 500, normalizeLimit(500))
}

func TestNormalizeOffset(t *testing.T) {
	assert.Equal(t, 0, normalizeOffset(-1))
	assert.Equal(t, 0, normalizeOffset(0))
	assert.Equal(t, 30, normalizeOffset(30))
}

func TestMapConflict(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := mapConflict(&pgconn.PgError{Code: code})
		assert.ErrorIs(t, err, domain.ErrConcurrentModification, code)
	}

	err := mapConflict(&pgconn.PgError{Code: "23505", ConstraintName: "invoices_account_id_invoice_number_key"})
	assert.ErrorIs(t, err, ErrDuplicate)

	plain := fmt.Errorf("connection refused")
	assert.Equal(t, plain, mapConflict(plain))

	wrapped := mapConflict(fmt.Errorf("lock invoice: %w", &pgconn.PgError{Code: "55P03"}))
	assert.ErrorIs(t, wrapped, domain.ErrConcurrentModification)
}

func TestNextDocumentNumber(t *testing.T) {
	prefix := "FACT-2026-"

	assert.Equal(t, "FACT-2026-00001", nextDocumentNumber(prefix, nil))

	numbers := []string{"FACT-2026-00001", "FACT-2026-00002", "FACT-2026-00003"}
	assert.Equal(t, "FACT-2026-00004", nextDocumentNumber(prefix, numbers))

	// A deleted draft leaves a hole; the next number must continue past the
	// surviving maximum instead of reissuing it.
	survivors := []string{"FACT-2026-00001", "FACT-2026-00003"}
	assert.Equal(t, "FACT-2026-00004", nextDocumentNumber(prefix, survivors))

	// Numbers from other years or malformed suffixes are ignored.
	mixed := []string{"FACT-2025-00009", "FACT-2026-00002", "FACT-2026-draft"}
	assert.Equal(t, "FACT-2026-00003", nextDocumentNumber(prefix, mixed))

	// Quote numbering shares the helper with its own prefix.
	assert.Equal(t, "DEV-2026-00002", nextDocumentNumber("DEV-2026-", []string{"DEV-2026-00001"}))
}

func TestParseDecimal(t *testing.T) {
	value, err := parseDecimal(" 1234.56 ")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", value.StringFixed(2))

	_, err = parseDecimal("not-a-number")
	require.Error(t, err)
}
