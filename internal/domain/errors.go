package domain

import "errors"

// Validation errors: malformed input rejected before any state change.
var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidRate     = errors.New("tax rate cannot be negative")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrMissingReason   = errors.New("adjustment reason is required")
	ErrInvalidDiscount = errors.New("discount percent must be between 0 and 100")
)

// State errors: operation incompatible with the current lifecycle state.
var (
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidInvoiceState = errors.New("invoice state does not allow this operation")
)

// Resource conflicts: business-rule violation against current data.
var (
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOverpaymentNotAllowed = errors.New("payment exceeds balance due")
)

// ErrConcurrentModification is transient; callers may retry.
var ErrConcurrentModification = errors.New("concurrent modification")

// ErrRenderingFailed wraps document renderer failures. Invoice state is unaffected.
var ErrRenderingFailed = errors.New("document rendering failed")
