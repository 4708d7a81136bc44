package domain

import "github.com/shopspring/decimal"

// ValidatePayment checks every guard for applying a payment against an
// invoice, in the order validation -> state -> business rule, so malformed
// input is rejected before state is even looked at.
func ValidatePayment(status InvoiceStatus, amount, balanceDue decimal.Decimal, allowOverpayment bool) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !status.Payable() {
		return ErrInvalidInvoiceState
	}
	if !allowOverpayment && amount.GreaterThan(balanceDue) {
		return ErrOverpaymentNotAllowed
	}
	return nil
}

// ValidateReservation checks a stock decrement of qty against the current
// quantity of a stocked product.
func ValidateReservation(currentStock, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if qty > currentStock {
		return ErrInsufficientStock
	}
	return nil
}

// ValidateAdjustment checks a manual correction. Delta may be positive or
// negative but must not drive stock below zero.
func ValidateAdjustment(currentStock, delta int) error {
	if delta == 0 {
		return ErrInvalidQuantity
	}
	if currentStock+delta < 0 {
		return ErrInsufficientStock
	}
	return nil
}

// SumPayments returns the amount paid: the sum over non-reversed payments.
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Reversed() {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}
