package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidatePayment(t *testing.T) {
	balance := dec("140")

	assert.NoError(t, ValidatePayment(StatusIssued, dec("140"), balance, false))
	assert.NoError(t, ValidatePayment(StatusPartiallyPaid, dec("1"), balance, false))

	assert.ErrorIs(t, ValidatePayment(StatusIssued, decimal.Zero, balance, false), ErrInvalidAmount)
	assert.ErrorIs(t, ValidatePayment(StatusIssued, dec("-5"), balance, false), ErrInvalidAmount)

	assert.ErrorIs(t, ValidatePayment(StatusDraft, dec("10"), balance, false), ErrInvalidInvoiceState)
	assert.ErrorIs(t, ValidatePayment(StatusCancelled, dec("10"), balance, false), ErrInvalidInvoiceState)
	assert.ErrorIs(t, ValidatePayment(StatusPaid, dec("10"), decimal.Zero, false), ErrInvalidInvoiceState)

	assert.ErrorIs(t, ValidatePayment(StatusPartiallyPaid, dec("200"), balance, false), ErrOverpaymentNotAllowed)
}

func TestValidatePaymentOverpaymentPolicy(t *testing.T) {
	// The single configurable policy point: when enabled, excess is accepted.
	assert.NoError(t, ValidatePayment(StatusIssued, dec("200"), dec("140"), true))
	assert.ErrorIs(t, ValidatePayment(StatusIssued, dec("200"), dec("140"), false), ErrOverpaymentNotAllowed)
}

func TestValidateReservation(t *testing.T) {
	assert.NoError(t, ValidateReservation(10, 6))
	assert.NoError(t, ValidateReservation(10, 10))
	assert.ErrorIs(t, ValidateReservation(10, 11), ErrInsufficientStock)
	assert.ErrorIs(t, ValidateReservation(0, 1), ErrInsufficientStock)
	assert.ErrorIs(t, ValidateReservation(10, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, ValidateReservation(10, -2), ErrInvalidQuantity)
}

func TestValidateAdjustment(t *testing.T) {
	assert.NoError(t, ValidateAdjustment(10, 5))
	assert.NoError(t, ValidateAdjustment(10, -10))
	assert.ErrorIs(t, ValidateAdjustment(10, -11), ErrInsufficientStock)
	assert.ErrorIs(t, ValidateAdjustment(10, 0), ErrInvalidQuantity)
}

func TestSumPaymentsIgnoresReversals(t *testing.T) {
	now := time.Now()
	original := int64(1)
	payments := []Payment{
		{ID: 1, Amount: dec("100"), ReversedAt: &now},
		{ID: 2, Amount: dec("-100"), ReversalOf: &original},
		{ID: 3, Amount: dec("40")},
		{ID: 4, Amount: dec("60")},
	}
	assert.True(t, SumPayments(payments).Equal(dec("100")))
	assert.True(t, SumPayments(nil).IsZero())
}
