package repository

import (
	"context"
	"fmt"
	"time"

	"facture-backend/internal/domain"
)

// DashboardOverview aggregates the account's headline figures in one round
// trip per concern. Overdue is derived the same way reads derive it: an
// unpaid, issued invoice whose due date has passed.
func (r *Repository) DashboardOverview(ctx context.Context, accountID int64, now time.Time) (*domain.DashboardOverview, error) {
	overview := &domain.DashboardOverview{}

	var rawRevenue, rawOutstanding, rawOverdue string
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COUNT(*) FILTER (WHERE status = 'draft')::int,
			COUNT(*) FILTER (WHERE status IN ('issued', 'partially_paid'))::int,
			COUNT(*) FILTER (WHERE status = 'paid')::int,
			COUNT(*) FILTER (
				WHERE status IN ('issued', 'partially_paid') AND due_date < $2
			)::int,
			COALESCE(SUM(amount_paid) FILTER (WHERE status != 'cancelled'), 0)::text,
			COALESCE(SUM(total - amount_paid) FILTER (
				WHERE status IN ('issued', 'partially_paid')
			), 0)::text,
			COALESCE(SUM(total - amount_paid) FILTER (
				WHERE status IN ('issued', 'partially_paid') AND due_date < $2
			), 0)::text
		FROM invoices
		WHERE account_id = $1
	`, accountID, now).Scan(
		&overview.TotalInvoices,
		&overview.DraftCount,
		&overview.OpenCount,
		&overview.PaidCount,
		&overview.OverdueCount,
		&rawRevenue,
		&rawOutstanding,
		&rawOverdue,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard overview: %w", err)
	}
	if overview.TotalRevenue, err = parseDecimal(rawRevenue); err != nil {
		return nil, err
	}
	if overview.OutstandingAmount, err = parseDecimal(rawOutstanding); err != nil {
		return nil, err
	}
	if overview.OverdueAmount, err = parseDecimal(rawOverdue); err != nil {
		return nil, err
	}

	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*)::int FROM clients WHERE account_id = $1",
		accountID,
	).Scan(&overview.ClientCount); err != nil {
		return nil, fmt.Errorf("dashboard client count: %w", err)
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)::int FROM products
		WHERE account_id = $1
		  AND is_active
		  AND is_stocked
		  AND stock_quantity <= low_stock_threshold
	`, accountID).Scan(&overview.LowStockCount); err != nil {
		return nil, fmt.Errorf("dashboard low stock count: %w", err)
	}

	return overview, nil
}

// MonthlyRevenue returns paid amounts grouped by payment month for the last
// `months` months. Reversed payments and their counter-entries are excluded:
// a payment and its reversal can land in different months, so summing both
// would distort each month even though they cancel across the whole range.
func (r *Repository) MonthlyRevenue(ctx context.Context, accountID int64, months int) ([]domain.MonthlyRevenue, error) {
	if months <= 0 || months > 36 {
		months = 12
	}

	rows, err := r.pool.Query(ctx, `
		SELECT
			to_char(date_trunc('month', p.paid_on), 'YYYY-MM'),
			COALESCE(SUM(p.amount), 0)::text,
			COUNT(DISTINCT p.invoice_id)::int
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE i.account_id = $1
		  AND p.reversed_at IS NULL
		  AND p.reversal_of IS NULL
		  AND p.paid_on >= date_trunc('month', NOW()) - ($2 || ' months')::interval
		GROUP BY date_trunc('month', p.paid_on)
		ORDER BY date_trunc('month', p.paid_on) ASC
	`, accountID, months-1)
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}
	defer rows.Close()

	result := make([]domain.MonthlyRevenue, 0, months)
	for rows.Next() {
		var (
			entry  domain.MonthlyRevenue
			rawSum string
		)
		if err := rows.Scan(&entry.Month, &rawSum, &entry.InvoiceCount); err != nil {
			return nil, fmt.Errorf("scan monthly revenue: %w", err)
		}
		if entry.Revenue, err = parseDecimal(rawSum); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate monthly revenue: %w", err)
	}
	return result, nil
}
