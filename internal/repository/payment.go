package repository

import (
	"context"
	"fmt"
	"time"

	"facture-backend/internal/domain"
	"facture-backend/internal/money"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PaymentInput struct {
	Amount    decimal.Decimal
	Method    domain.PaymentMethod
	PaidOn    time.Time
	Reference *string
	Notes     *string
}

type PaymentListFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

const paymentColumns = `
	id,
	invoice_id,
	amount::text,
	method,
	paid_on,
	reference,
	notes,
	reversed_at,
	reversal_of,
	created_at
`

func scanPaymentRow(row pgx.Row) (domain.Payment, error) {
	var (
		p         domain.Payment
		rawAmount string
	)
	if err := row.Scan(
		&p.ID,
		&p.InvoiceID,
		&rawAmount,
		&p.Method,
		&p.PaidOn,
		&p.Reference,
		&p.Notes,
		&p.ReversedAt,
		&p.ReversalOf,
		&p.CreatedAt,
	); err != nil {
		return domain.Payment{}, err
	}
	var err error
	if p.Amount, err = parseDecimal(rawAmount); err != nil {
		return domain.Payment{}, err
	}
	return p, nil
}

func loadPaymentsTx(ctx context.Context, tx pgx.Tx, invoiceID int64) ([]domain.Payment, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE invoice_id = $1 ORDER BY id ASC",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query payments for invoice %d: %w", invoiceID, err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments for invoice %d: %w", invoiceID, err)
	}
	return payments, nil
}

// ApplyPayment records a payment against an issued invoice. The invoice row
// is locked first and every guard runs against the locked state, so the
// balance can never be overshot by concurrent writers.
func (r *Repository) ApplyPayment(ctx context.Context, accountID, invoiceID int64, input PaymentInput, allowOverpayment bool) (domain.Invoice, domain.Payment, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Invoice{}, domain.Payment{}, err
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoiceTx(ctx, tx, accountID, invoiceID)
	if err != nil {
		return domain.Invoice{}, domain.Payment{}, err
	}
	if err := domain.ValidatePayment(inv.Status, input.Amount, inv.BalanceDue, allowOverpayment); err != nil {
		return domain.Invoice{}, domain.Payment{}, err
	}

	reference := input.Reference
	if reference == nil || *reference == "" {
		generated := uuid.NewString()
		reference = &generated
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO payments (invoice_id, amount, method, paid_on, reference, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+paymentColumns,
		invoiceID,
		input.Amount.StringFixed(money.Scale),
		input.Method,
		input.PaidOn,
		reference,
		input.Notes,
	)
	payment, err := scanPaymentRow(row)
	if err != nil {
		return domain.Invoice{}, domain.Payment{}, fmt.Errorf("insert payment: %w", mapConflict(err))
	}

	updated, err := recomputeInvoiceTx(ctx, tx, invoiceID, inv.Status)
	if err != nil {
		return domain.Invoice{}, domain.Payment{}, err
	}
	if err := commit(ctx, tx, "apply payment"); err != nil {
		return domain.Invoice{}, domain.Payment{}, err
	}
	return updated, payment, nil
}

// ReversePayment corrects a recorded payment by marking it reversed and
// inserting a negative counter-entry. The original row is never rewritten.
// A paid or cancelled invoice is final, so its payments cannot be reversed.
func (r *Repository) ReversePayment(ctx context.Context, accountID, invoiceID, paymentID int64, notes *string) (domain.Invoice, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoiceTx(ctx, tx, accountID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if inv.Status.Terminal() {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	row := tx.QueryRow(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = $1 AND invoice_id = $2",
		paymentID, invoiceID,
	)
	payment, err := scanPaymentRow(row)
	if isNoRows(err) {
		return domain.Invoice{}, ErrNotFound
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("load payment %d: %w", paymentID, err)
	}
	if payment.Reversed() {
		return domain.Invoice{}, domain.ErrInvalidInvoiceState
	}

	if _, err := tx.Exec(ctx,
		"UPDATE payments SET reversed_at = NOW() WHERE id = $1",
		paymentID,
	); err != nil {
		return domain.Invoice{}, fmt.Errorf("mark payment %d reversed: %w", paymentID, err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO payments (invoice_id, amount, method, paid_on, reference, notes, reversal_of)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		invoiceID,
		payment.Amount.Neg().StringFixed(money.Scale),
		payment.Method,
		time.Now(),
		payment.Reference,
		notes,
		paymentID,
	); err != nil {
		return domain.Invoice{}, fmt.Errorf("insert payment reversal: %w", err)
	}

	updated, err := recomputeInvoiceTx(ctx, tx, invoiceID, inv.Status)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := commit(ctx, tx, "reverse payment"); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

func (r *Repository) ListInvoicePayments(ctx context.Context, accountID, invoiceID int64) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE invoice_id = $1
		  AND invoice_id IN (SELECT id FROM invoices WHERE account_id = $2)
		ORDER BY id ASC
	`, invoiceID, accountID)
	if err != nil {
		return nil, fmt.Errorf("list invoice payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice payments: %w", err)
	}
	return payments, nil
}

// ListPayments returns payments across all of the account's invoices,
// newest first.
func (r *Repository) ListPayments(ctx context.Context, accountID int64, filter PaymentListFilter) ([]domain.Payment, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)

	query := `
		SELECT p.id, p.invoice_id, p.amount::text, p.method, p.paid_on,
		       p.reference, p.notes, p.reversed_at, p.reversal_of, p.created_at
		FROM payments p
		JOIN invoices i ON i.id = p.invoice_id
		WHERE i.account_id = $1
	`
	args := []any{accountID}
	index := 2

	if filter.From != nil {
		query += fmt.Sprintf(" AND p.paid_on >= $%d", index)
		args = append(args, *filter.From)
		index++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND p.paid_on <= $%d", index)
		args = append(args, *filter.To)
		index++
	}
	query += fmt.Sprintf(" ORDER BY p.paid_on DESC, p.id DESC LIMIT $%d OFFSET $%d", index, index+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0, limit)
	for rows.Next() {
		p, err := scanPaymentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}
