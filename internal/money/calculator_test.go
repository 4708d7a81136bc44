package money

import (
	"math/rand"
	"testing"

	"facture-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeLine(t *testing.T) {
	result, err := ComputeLine(Line{Quantity: 2, UnitPrice: dec("100"), TaxRate: dec("20")})
	require.NoError(t, err)
	assert.True(t, result.Subtotal.Equal(dec("200")), "subtotal = %s", result.Subtotal)
	assert.True(t, result.Tax.Equal(dec("40")), "tax = %s", result.Tax)
	assert.True(t, result.Total.Equal(dec("240")), "total = %s", result.Total)
}

func TestComputeLineZeroRate(t *testing.T) {
	result, err := ComputeLine(Line{Quantity: 3, UnitPrice: dec("19.99"), TaxRate: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, result.Subtotal.Equal(dec("59.97")))
	assert.True(t, result.Tax.IsZero())
	assert.True(t, result.Total.Equal(dec("59.97")))
}

func TestComputeLineRoundsHalfEven(t *testing.T) {
	// 1 x 10.01 at 2.5% = 0.250250 -> banker's rounding lands on 0.25
	result, err := ComputeLine(Line{Quantity: 1, UnitPrice: dec("10.01"), TaxRate: dec("2.5")})
	require.NoError(t, err)
	assert.True(t, result.Tax.Equal(dec("0.25")), "tax = %s", result.Tax)

	// 1 x 10.10 at 2.5% = 0.2525 -> rounds to the even neighbour 0.25, not 0.26
	result, err = ComputeLine(Line{Quantity: 1, UnitPrice: dec("10.10"), TaxRate: dec("2.5")})
	require.NoError(t, err)
	assert.True(t, result.Tax.Equal(dec("0.25")), "tax = %s", result.Tax)

	// 1 x 10.30 at 2.5% = 0.2575 -> rounds up to the even neighbour 0.26
	result, err = ComputeLine(Line{Quantity: 1, UnitPrice: dec("10.30"), TaxRate: dec("2.5")})
	require.NoError(t, err)
	assert.True(t, result.Tax.Equal(dec("0.26")), "tax = %s", result.Tax)
}

func TestComputeLineDiscount(t *testing.T) {
	// 2 x 100 with 10% off = 180 net, taxed at 20% on the discounted base.
	result, err := ComputeLine(Line{Quantity: 2, UnitPrice: dec("100"), TaxRate: dec("20"), DiscountPercent: dec("10")})
	require.NoError(t, err)
	assert.True(t, result.Subtotal.Equal(dec("180")), "subtotal = %s", result.Subtotal)
	assert.True(t, result.Tax.Equal(dec("36")), "tax = %s", result.Tax)
	assert.True(t, result.Total.Equal(dec("216")), "total = %s", result.Total)

	// 100% discount zeroes the line.
	result, err = ComputeLine(Line{Quantity: 1, UnitPrice: dec("50"), TaxRate: dec("20"), DiscountPercent: dec("100")})
	require.NoError(t, err)
	assert.True(t, result.Total.IsZero())
}

func TestComputeLineInvalidInputs(t *testing.T) {
	_, err := ComputeLine(Line{Quantity: 0, UnitPrice: dec("10"), TaxRate: dec("20")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = ComputeLine(Line{Quantity: -1, UnitPrice: dec("10"), TaxRate: dec("20")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = ComputeLine(Line{Quantity: 1, UnitPrice: dec("10"), TaxRate: dec("-0.01")})
	assert.ErrorIs(t, err, domain.ErrInvalidRate)

	_, err = ComputeLine(Line{Quantity: 1, UnitPrice: dec("10"), TaxRate: dec("20"), DiscountPercent: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)

	_, err = ComputeLine(Line{Quantity: 1, UnitPrice: dec("10"), TaxRate: dec("20"), DiscountPercent: dec("100.01")})
	assert.ErrorIs(t, err, domain.ErrInvalidDiscount)
}

func TestComputeInvoiceAggregates(t *testing.T) {
	lines := []Line{
		{Quantity: 2, UnitPrice: dec("100"), TaxRate: dec("20")},
		{Quantity: 1, UnitPrice: dec("49.99"), TaxRate: dec("5.5")},
		{Quantity: 4, UnitPrice: dec("0.99"), TaxRate: dec("20")},
	}
	results, totals, err := ComputeInvoice(lines)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Aggregate equals the sum of the rounded lines, never a re-rounding.
	sumSub, sumTax := decimal.Zero, decimal.Zero
	for _, r := range results {
		sumSub = sumSub.Add(r.Subtotal)
		sumTax = sumTax.Add(r.Tax)
	}
	assert.True(t, totals.Subtotal.Equal(sumSub))
	assert.True(t, totals.Tax.Equal(sumTax))
	assert.True(t, totals.Total.Equal(sumSub.Add(sumTax)))
}

func TestComputeInvoiceOrderIndependent(t *testing.T) {
	lines := []Line{
		{Quantity: 2, UnitPrice: dec("100"), TaxRate: dec("20")},
		{Quantity: 3, UnitPrice: dec("33.33"), TaxRate: dec("10")},
		{Quantity: 7, UnitPrice: dec("1.01"), TaxRate: dec("2.1")},
		{Quantity: 1, UnitPrice: dec("999.99"), TaxRate: dec("5.5")},
	}
	_, want, err := ComputeInvoice(lines)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]Line, len(lines))
		copy(shuffled, lines)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		_, got, err := ComputeInvoice(shuffled)
		require.NoError(t, err)
		assert.True(t, got.Subtotal.Equal(want.Subtotal))
		assert.True(t, got.Tax.Equal(want.Tax))
		assert.True(t, got.Total.Equal(want.Total))
	}
}

func TestComputeInvoiceIdempotent(t *testing.T) {
	lines := []Line{{Quantity: 5, UnitPrice: dec("12.49"), TaxRate: dec("20")}}
	_, first, err := ComputeInvoice(lines)
	require.NoError(t, err)
	_, second, err := ComputeInvoice(lines)
	require.NoError(t, err)
	assert.True(t, first.Total.Equal(second.Total))
}

func TestComputeInvoiceEmpty(t *testing.T) {
	results, totals, err := ComputeInvoice(nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.True(t, totals.Total.IsZero())
}
