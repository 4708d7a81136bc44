// Package money computes line and invoice totals with fixed-point decimal
// arithmetic. Each line is rounded to the smallest currency unit with
// round-half-even before summing, so re-running the calculator on the same
// inputs always yields the same aggregate regardless of line order.
package money

import (
	"facture-backend/internal/domain"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits of the smallest currency unit.
const Scale = 2

var hundred = decimal.NewFromInt(100)

type Line struct {
	Quantity        int
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal // percent, e.g. 20 for 20%
	DiscountPercent decimal.Decimal // percent off the gross, 0..100
}

type LineResult struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLine returns subtotal = quantity x unit price minus the line
// discount, and tax = subtotal x rate, each rounded half-even to Scale digits.
func ComputeLine(line Line) (LineResult, error) {
	if line.Quantity <= 0 {
		return LineResult{}, domain.ErrInvalidQuantity
	}
	if line.TaxRate.IsNegative() {
		return LineResult{}, domain.ErrInvalidRate
	}
	if line.DiscountPercent.IsNegative() || line.DiscountPercent.GreaterThan(hundred) {
		return LineResult{}, domain.ErrInvalidDiscount
	}

	gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	discount := gross.Mul(line.DiscountPercent).Div(hundred)
	subtotal := gross.Sub(discount).RoundBank(Scale)
	tax := subtotal.Mul(line.TaxRate).Div(hundred).RoundBank(Scale)
	return LineResult{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}

// ComputeInvoice computes every line in input order plus the invoice-level
// aggregate. The first invalid line aborts the whole computation.
func ComputeInvoice(lines []Line) ([]LineResult, Totals, error) {
	results := make([]LineResult, 0, len(lines))
	totals := Totals{Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero}
	for _, line := range lines {
		result, err := ComputeLine(line)
		if err != nil {
			return nil, Totals{}, err
		}
		results = append(results, result)
		totals.Subtotal = totals.Subtotal.Add(result.Subtotal)
		totals.Tax = totals.Tax.Add(result.Tax)
		totals.Total = totals.Total.Add(result.Total)
	}
	return results, totals, nil
}
