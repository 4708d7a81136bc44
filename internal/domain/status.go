package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus is the persisted lifecycle state of an invoice. "overdue" is
// never stored: it is derived at read time from the due date and balance, so
// it stays correct without a background job.
type InvoiceStatus string

const (
	StatusDraft         InvoiceStatus = "draft"
	StatusIssued        InvoiceStatus = "issued"
	StatusPartiallyPaid InvoiceStatus = "partially_paid"
	StatusPaid          InvoiceStatus = "paid"
	StatusCancelled     InvoiceStatus = "cancelled"
)

// Terminal states reject every further mutation.
func (s InvoiceStatus) Terminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// Payable reports whether the invoice can receive payments.
func (s InvoiceStatus) Payable() bool {
	return s == StatusIssued || s == StatusPartiallyPaid
}

// CanModifyItems: line items are mutable only while the invoice is a draft.
func (s InvoiceStatus) CanModifyItems() bool {
	return s == StatusDraft
}

// CanIssue guards the draft -> issued transition: a draft with at least one item.
func (s InvoiceStatus) CanIssue(itemCount int) error {
	if s != StatusDraft {
		return ErrInvalidTransition
	}
	if itemCount < 1 {
		return ErrInvalidInvoiceState
	}
	return nil
}

// CanCancel guards the cancel transition. Drafts cancel unconditionally;
// issued invoices cancel only while no payment has been recorded.
func (s InvoiceStatus) CanCancel(hasPayments bool) error {
	if s.Terminal() {
		return ErrInvalidTransition
	}
	if s != StatusDraft && hasPayments {
		return ErrInvalidInvoiceState
	}
	return nil
}

// NextStatusForPayment returns the status an issued or partially paid invoice
// lands in once amount_paid reaches the given value.
func NextStatusForPayment(total, amountPaid decimal.Decimal) InvoiceStatus {
	if amountPaid.GreaterThanOrEqual(total) {
		return StatusPaid
	}
	if amountPaid.IsPositive() {
		return StatusPartiallyPaid
	}
	return StatusIssued
}

// BalanceDue is total minus amount paid, floored at zero.
func BalanceDue(total, amountPaid decimal.Decimal) decimal.Decimal {
	balance := total.Sub(amountPaid)
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// DeriveOverdue evaluates the read-time overdue predicate: a payable invoice
// whose due date has passed with a positive balance. It never blocks payment
// application and a later full payment still moves the invoice to paid.
func DeriveOverdue(status InvoiceStatus, dueDate time.Time, balanceDue decimal.Decimal, now time.Time) bool {
	return status.Payable() && now.After(dueDate) && balanceDue.IsPositive()
}
