package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusIssued.Terminal())
	assert.False(t, StatusPartiallyPaid.Terminal())
}

func TestCanModifyItems(t *testing.T) {
	assert.True(t, StatusDraft.CanModifyItems())
	for _, s := range []InvoiceStatus{StatusIssued, StatusPartiallyPaid, StatusPaid, StatusCancelled} {
		assert.False(t, s.CanModifyItems(), "items must be frozen in %s", s)
	}
}

func TestCanIssue(t *testing.T) {
	assert.NoError(t, StatusDraft.CanIssue(1))
	assert.NoError(t, StatusDraft.CanIssue(3))
	assert.ErrorIs(t, StatusDraft.CanIssue(0), ErrInvalidInvoiceState)

	for _, s := range []InvoiceStatus{StatusIssued, StatusPartiallyPaid, StatusPaid, StatusCancelled} {
		assert.ErrorIs(t, s.CanIssue(2), ErrInvalidTransition, "issue from %s", s)
	}
}

func TestCanCancel(t *testing.T) {
	assert.NoError(t, StatusDraft.CanCancel(false))
	assert.NoError(t, StatusDraft.CanCancel(true)) // drafts never have payments in practice
	assert.NoError(t, StatusIssued.CanCancel(false))
	assert.NoError(t, StatusPartiallyPaid.CanCancel(false))

	assert.ErrorIs(t, StatusIssued.CanCancel(true), ErrInvalidInvoiceState)
	assert.ErrorIs(t, StatusPartiallyPaid.CanCancel(true), ErrInvalidInvoiceState)
	assert.ErrorIs(t, StatusPaid.CanCancel(false), ErrInvalidTransition)
	assert.ErrorIs(t, StatusCancelled.CanCancel(false), ErrInvalidTransition)
}

func TestNextStatusForPayment(t *testing.T) {
	total := dec("240")
	assert.Equal(t, StatusIssued, NextStatusForPayment(total, decimal.Zero))
	assert.Equal(t, StatusPartiallyPaid, NextStatusForPayment(total, dec("100")))
	assert.Equal(t, StatusPartiallyPaid, NextStatusForPayment(total, dec("239.99")))
	assert.Equal(t, StatusPaid, NextStatusForPayment(total, dec("240")))
	assert.Equal(t, StatusPaid, NextStatusForPayment(total, dec("250")))
}

// Payments summing exactly to the total always end in paid with a zero
// balance, regardless of application order.
func TestPaymentOrderIndependence(t *testing.T) {
	total := dec("240")
	amounts := []string{"100", "40", "60", "40"}

	permutations := [][]int{
		{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1},
	}
	for _, perm := range permutations {
		paid := decimal.Zero
		status := StatusIssued
		for _, i := range perm {
			paid = paid.Add(dec(amounts[i]))
			status = NextStatusForPayment(total, paid)
		}
		assert.Equal(t, StatusPaid, status)
		assert.True(t, BalanceDue(total, paid).IsZero())
	}
}

func TestBalanceDueFloorsAtZero(t *testing.T) {
	assert.True(t, BalanceDue(dec("100"), dec("40")).Equal(dec("60")))
	assert.True(t, BalanceDue(dec("100"), dec("100")).IsZero())
	assert.True(t, BalanceDue(dec("100"), dec("120")).IsZero())
}

func TestDeriveOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -10)
	future := now.AddDate(0, 0, 10)

	assert.True(t, DeriveOverdue(StatusIssued, past, dec("100"), now))
	assert.True(t, DeriveOverdue(StatusPartiallyPaid, past, dec("1"), now))

	assert.False(t, DeriveOverdue(StatusIssued, future, dec("100"), now))
	assert.False(t, DeriveOverdue(StatusIssued, past, decimal.Zero, now))
	assert.False(t, DeriveOverdue(StatusDraft, past, dec("100"), now))
	assert.False(t, DeriveOverdue(StatusPaid, past, decimal.Zero, now))
	assert.False(t, DeriveOverdue(StatusCancelled, past, dec("100"), now))
}

func TestParsePaymentMethod(t *testing.T) {
	for _, raw := range []string{"cash", "card", "transfer", "check", "mobile"} {
		method, ok := ParsePaymentMethod(raw)
		require.True(t, ok)
		assert.Equal(t, PaymentMethod(raw), method)
	}
	_, ok := ParsePaymentMethod("bitcoin")
	assert.False(t, ok)
}
