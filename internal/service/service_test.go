package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"facture-backend/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), zerolog.Nop(), "test", func() (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, result)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRetriesConflicts(t *testing.T) {
	calls := 0
	result, err := withRetry(context.Background(), zerolog.Nop(), "test", func() (int, error) {
		calls++
		if calls < 3 {
			return 0, fmt.Errorf("apply payment: %w", domain.ErrConcurrentModification)
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestWithRetryGivesUpAfterBudget(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), zerolog.Nop(), "test", func() (int, error) {
		calls++
		return 0, domain.ErrConcurrentModification
	})
	require.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, retryAttempts, calls)
}

func TestWithRetryDoesNotRetryOtherErrors(t *testing.T) {
	calls := 0
	_, err := withRetry(context.Background(), zerolog.Nop(), "test", func() (int, error) {
		calls++
		return 0, domain.ErrInsufficientStock
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, calls)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Save("FACT-2026-00001-abc.xlsx", strings.NewReader("artifact bytes")))

	reader, err := store.Open("FACT-2026-00001-abc.xlsx")
	require.NoError(t, err)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "artifact bytes", string(content))
}

func TestFileStoreOpenMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("missing.xlsx")
	require.Error(t, err)
}
