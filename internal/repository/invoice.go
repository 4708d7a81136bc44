package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"facture-backend/internal/domain"
	"facture-backend/internal/money"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type InvoiceItemInput struct {
	ProductID       *int64
	Description     string
	Quantity        int
	Unit            *string
	UnitPrice       *decimal.Decimal
	TaxRate         *decimal.Decimal
	DiscountPercent *decimal.Decimal
}

type InvoiceCreateInput struct {
	ClientID  int64
	IssueDate time.Time
	DueDate   time.Time
	Notes     *string
	Terms     *string
	Items     []InvoiceItemInput
}

type InvoiceListFilter struct {
	Status   string
	ClientID *int64
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

const invoiceColumns = `
	id,
	account_id,
	client_id,
	invoice_number,
	status,
	issue_date,
	due_date,
	notes,
	terms,
	subtotal::text,
	tax_total::text,
	total::text,
	amount_paid::text,
	document_path,
	issued_at,
	cancelled_at,
	created_at,
	updated_at
`

const invoiceItemColumns = `
	id,
	invoice_id,
	product_id,
	description,
	quantity,
	unit,
	unit_price::text,
	tax_rate::text,
	discount_percent::text,
	subtotal::text,
	tax_amount::text,
	line_total::text
`

func scanInvoiceRow(row pgx.Row) (domain.Invoice, error) {
	var (
		inv                                    domain.Invoice
		rawSubtotal, rawTax, rawTotal, rawPaid string
	)
	if err := row.Scan(
		&inv.ID,
		&inv.AccountID,
		&inv.ClientID,
		&inv.InvoiceNumber,
		&inv.Status,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.Notes,
		&inv.Terms,
		&rawSubtotal,
		&rawTax,
		&rawTotal,
		&rawPaid,
		&inv.DocumentPath,
		&inv.IssuedAt,
		&inv.CancelledAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return domain.Invoice{}, err
	}
	var err error
	if inv.Subtotal, err = parseDecimal(rawSubtotal); err != nil {
		return domain.Invoice{}, err
	}
	if inv.TaxTotal, err = parseDecimal(rawTax); err != nil {
		return domain.Invoice{}, err
	}
	if inv.Total, err = parseDecimal(rawTotal); err != nil {
		return domain.Invoice{}, err
	}
	if inv.AmountPaid, err = parseDecimal(rawPaid); err != nil {
		return domain.Invoice{}, err
	}
	inv.BalanceDue = domain.BalanceDue(inv.Total, inv.AmountPaid)
	inv.Overdue = domain.DeriveOverdue(inv.Status, inv.DueDate, inv.BalanceDue, time.Now())
	return inv, nil
}

func scanInvoiceItemRow(row pgx.Row) (domain.InvoiceItem, error) {
	var (
		item                                                    domain.InvoiceItem
		rawPrice, rawRate, rawDiscount, rawSub, rawTax, rawLine string
	)
	if err := row.Scan(
		&item.ID,
		&item.InvoiceID,
		&item.ProductID,
		&item.Description,
		&item.Quantity,
		&item.Unit,
		&rawPrice,
		&rawRate,
		&rawDiscount,
		&rawSub,
		&rawTax,
		&rawLine,
	); err != nil {
		return domain.InvoiceItem{}, err
	}
	var err error
	if item.UnitPrice, err = parseDecimal(rawPrice); err != nil {
		return domain.InvoiceItem{}, err
	}
	if item.TaxRate, err = parseDecimal(rawRate); err != nil {
		return domain.InvoiceItem{}, err
	}
	if item.DiscountPercent, err = parseDecimal(rawDiscount); err != nil {
		return domain.InvoiceItem{}, err
	}
	if item.Subtotal, err = parseDecimal(rawSub); err != nil {
		return domain.InvoiceItem{}, err
	}
	if item.TaxAmount, err = parseDecimal(rawTax); err != nil {
		return domain.InvoiceItem{}, err
	}
	if item.LineTotal, err = parseDecimal(rawLine); err != nil {
		return domain.InvoiceItem{}, err
	}
	return item, nil
}

// lockInvoiceTx re-reads the invoice under a row lock; every guard must be
// validated against the state it returns, not against what the caller saw.
func lockInvoiceTx(ctx context.Context, tx pgx.Tx, accountID, invoiceID int64) (domain.Invoice, error) {
	row := tx.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1 AND account_id = $2 FOR UPDATE",
		invoiceID, accountID,
	)
	inv, err := scanInvoiceRow(row)
	if isNoRows(err) {
		return domain.Invoice{}, ErrNotFound
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("lock invoice %d: %w", invoiceID, mapConflict(err))
	}
	return inv, nil
}

func loadInvoiceItemsTx(ctx context.Context, tx pgx.Tx, invoiceID int64) ([]domain.InvoiceItem, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+invoiceItemColumns+" FROM invoice_items WHERE invoice_id = $1 ORDER BY id ASC",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query invoice items %d: %w", invoiceID, err)
	}
	defer rows.Close()

	items := make([]domain.InvoiceItem, 0)
	for rows.Next() {
		item, err := scanInvoiceItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items %d: %w", invoiceID, err)
	}
	return items, nil
}

// recomputeInvoiceTx is the single place derived invoice fields are written.
// It recomputes subtotal/tax/total from the item rows and amount_paid from
// the payment rows, then moves a payable status forward if the paid amount
// now warrants it. Called at the end of every mutating transaction.
func recomputeInvoiceTx(ctx context.Context, tx pgx.Tx, invoiceID int64, status domain.InvoiceStatus) (domain.Invoice, error) {
	items, err := loadInvoiceItemsTx(ctx, tx, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	lines := make([]money.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, money.Line{
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxRate:         item.TaxRate,
			DiscountPercent: item.DiscountPercent,
		})
	}
	_, totals, err := money.ComputeInvoice(lines)
	if err != nil {
		return domain.Invoice{}, err
	}

	payments, err := loadPaymentsTx(ctx, tx, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	amountPaid := domain.SumPayments(payments)

	if status.Payable() {
		status = domain.NextStatusForPayment(totals.Total, amountPaid)
	}

	row := tx.QueryRow(ctx, `
		UPDATE invoices
		SET
			subtotal = $2,
			tax_total = $3,
			total = $4,
			amount_paid = $5,
			status = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+invoiceColumns,
		invoiceID,
		totals.Subtotal.StringFixed(money.Scale),
		totals.Tax.StringFixed(money.Scale),
		totals.Total.StringFixed(money.Scale),
		amountPaid.StringFixed(money.Scale),
		status,
	)
	inv, err := scanInvoiceRow(row)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("recompute invoice %d: %w", invoiceID, err)
	}
	inv.Items = items
	inv.Payments = payments
	return inv, nil
}

// nextInvoiceNumberTx serializes numbering per account via the account row
// lock, matching the FACT-<year>-<seq> format of the issued documents.
func nextInvoiceNumberTx(ctx context.Context, tx pgx.Tx, accountID int64, issueDate time.Time) (string, error) {
	var locked int64
	if err := tx.QueryRow(ctx,
		"SELECT id FROM accounts WHERE id = $1 FOR UPDATE", accountID,
	).Scan(&locked); err != nil {
		if isNoRows(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lock account %d: %w", accountID, mapConflict(err))
	}

	prefix := fmt.Sprintf("FACT-%d-", issueDate.Year())
	rows, err := tx.Query(ctx,
		"SELECT invoice_number FROM invoices WHERE account_id = $1 AND invoice_number LIKE $2 || '%'",
		accountID, prefix,
	)
	if err != nil {
		return "", fmt.Errorf("list invoice numbers for prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return "", fmt.Errorf("scan invoice number: %w", err)
		}
		existing = append(existing, number)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate invoice numbers: %w", err)
	}
	return nextDocumentNumber(prefix, existing), nil
}

// nextDocumentNumber continues from the highest surviving suffix, not from
// the row count. A deleted draft leaves a gap; counting rows would hand out a
// number a surviving document already holds.
func nextDocumentNumber(prefix string, existing []string) string {
	last := 0
	for _, number := range existing {
		suffix := strings.TrimPrefix(number, prefix)
		if suffix == number {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if seq > last {
			last = seq
		}
	}
	return fmt.Sprintf("%s%05d", prefix, last+1)
}

// resolveItemTx turns an item input into snapshot values. Product prices and
// rates are copied at add-time; later product edits never touch the item.
func resolveItemTx(ctx context.Context, tx pgx.Tx, accountID int64, input InvoiceItemInput) (domain.InvoiceItem, *domain.Product, error) {
	if input.Quantity <= 0 {
		return domain.InvoiceItem{}, nil, domain.ErrInvalidQuantity
	}

	item := domain.InvoiceItem{
		Description: strings.TrimSpace(input.Description),
		Quantity:    input.Quantity,
		Unit:        "unit",
		TaxRate:     decimal.NewFromInt(20),
	}

	var product *domain.Product
	if input.ProductID != nil {
		row := tx.QueryRow(ctx,
			"SELECT "+productColumns+" FROM products WHERE id = $1 AND account_id = $2",
			*input.ProductID, accountID,
		)
		p, err := scanProductRow(row)
		if isNoRows(err) {
			return domain.InvoiceItem{}, nil, ErrNotFound
		}
		if err != nil {
			return domain.InvoiceItem{}, nil, fmt.Errorf("load product %d: %w", *input.ProductID, err)
		}
		product = &p
		item.ProductID = &p.ID
		item.UnitPrice = p.UnitPrice
		item.TaxRate = p.TaxRate
		item.Unit = p.Unit
		if item.Description == "" {
			item.Description = p.Name
		}
	} else if item.Description == "" {
		return domain.InvoiceItem{}, nil, fmt.Errorf("free-text item needs a description")
	}

	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	} else if product == nil {
		return domain.InvoiceItem{}, nil, fmt.Errorf("free-text item needs a unit price")
	}
	if input.TaxRate != nil {
		item.TaxRate = *input.TaxRate
	}
	if input.Unit != nil && strings.TrimSpace(*input.Unit) != "" {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	item.DiscountPercent = decimal.Zero
	if input.DiscountPercent != nil {
		item.DiscountPercent = *input.DiscountPercent
	}

	result, err := money.ComputeLine(money.Line{
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		TaxRate:         item.TaxRate,
		DiscountPercent: item.DiscountPercent,
	})
	if err != nil {
		return domain.InvoiceItem{}, nil, err
	}
	item.Subtotal = result.Subtotal
	item.TaxAmount = result.Tax
	item.LineTotal = result.Total
	return item, product, nil
}

// insertItemTx writes the item row and reserves stock when the referenced
// product is stocked. Reservation happens at add-time so two drafts can never
// claim the same unit.
func insertItemTx(ctx context.Context, tx pgx.Tx, accountID, invoiceID int64, item domain.InvoiceItem, product *domain.Product) error {
	var itemID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO invoice_items (
			invoice_id, product_id, description, quantity, unit,
			unit_price, tax_rate, discount_percent, subtotal, tax_amount, line_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		invoiceID,
		item.ProductID,
		item.Description,
		item.Quantity,
		item.Unit,
		item.UnitPrice.StringFixed(money.Scale),
		item.TaxRate.String(),
		item.DiscountPercent.String(),
		item.Subtotal.StringFixed(money.Scale),
		item.TaxAmount.StringFixed(money.Scale),
		item.LineTotal.StringFixed(money.Scale),
	).Scan(&itemID); err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}

	if product != nil && product.IsStocked {
		return reserveStockTx(ctx, tx, accountID, product.ID, itemID, item.Quantity)
	}
	return nil
}

func (r *Repository) CreateInvoice(ctx context.Context, accountID int64, input InvoiceCreateInput) (domain.Invoice, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	defer tx.Rollback(ctx)

	var clientID int64
	err = tx.QueryRow(ctx,
		"SELECT id FROM clients WHERE id = $1 AND account_id = $2",
		input.ClientID, accountID,
	).Scan(&clientID)
	if isNoRows(err) {
		return domain.Invoice{}, ErrNotFound
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("verify client %d: %w", input.ClientID, err)
	}

	number, err := nextInvoiceNumberTx(ctx, tx, accountID, input.IssueDate)
	if err != nil {
		return domain.Invoice{}, err
	}

	var invoiceID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO invoices (account_id, client_id, invoice_number, status, issue_date, due_date, notes, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		accountID,
		clientID,
		number,
		domain.StatusDraft,
		input.IssueDate,
		input.DueDate,
		input.Notes,
		input.Terms,
	).Scan(&invoiceID); err != nil {
		return domain.Invoice{}, fmt.Errorf("insert invoice: %w", mapConflict(err))
	}

	for _, itemInput := range input.Items {
		item, product, err := resolveItemTx(ctx, tx, accountID, itemInput)
		if err != nil {
			return domain.Invoice{}, err
		}
		if err := insertItemTx(ctx, tx, accountID, invoiceID, item, product); err != nil {
			return domain.Invoice{}, err
		}
	}

	inv, err := recomputeInvoiceTx(ctx, tx, invoiceID, domain.StatusDraft)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := commit(ctx, tx, "create invoice"); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (r *Repository) AddInvoiceItem(ctx context.Context, accountID, invoiceID int64, input InvoiceItemInput) (domain.Invoice, error) {
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
	if !inv.Status.CanModifyItems() {
		return domain.Invoice{}, domain.ErrInvalidInvoiceState
	}

	item, product, err := resolveItemTx(ctx, tx, accountID, input)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := insertItemTx(ctx, tx, accountID, invoiceID, item, product); err != nil {
		return domain.Invoice{}, err
	}

	updated, err := recomputeInvoiceTx(ctx, tx, invoiceID, inv.Status)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := commit(ctx, tx, "add invoice item"); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

func (r *Repository) RemoveInvoiceItem(ctx context.Context, accountID, invoiceID, itemID int64) (domain.Invoice, error) {
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
	if !inv.Status.CanModifyItems() {
		return domain.Invoice{}, domain.ErrInvalidInvoiceState
	}

	row := tx.QueryRow(ctx,
		"SELECT "+invoiceItemColumns+" FROM invoice_items WHERE id = $1 AND invoice_id = $2",
		itemID, invoiceID,
	)
	item, err := scanInvoiceItemRow(row)
	if isNoRows(err) {
		return domain.Invoice{}, ErrNotFound
	}
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("load invoice item %d: %w", itemID, err)
	}

	// Release before the delete so the ledger entry still references the item.
	if item.ProductID != nil {
		if err := releaseStockTx(ctx, tx, accountID, *item.ProductID, item.ID, item.Quantity); err != nil {
			return domain.Invoice{}, err
		}
	}
	if _, err := tx.Exec(ctx, "DELETE FROM invoice_items WHERE id = $1", itemID); err != nil {
		return domain.Invoice{}, fmt.Errorf("delete invoice item %d: %w", itemID, err)
	}

	updated, err := recomputeInvoiceTx(ctx, tx, invoiceID, inv.Status)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := commit(ctx, tx, "remove invoice item"); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

// IssueInvoice finalizes a draft: items freeze, the invoice becomes payable.
func (r *Repository) IssueInvoice(ctx context.Context, accountID, invoiceID int64) (domain.Invoice, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoiceTx(ctx, tx, accountID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	items, err := loadInvoiceItemsTx(ctx, tx, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := inv.Status.CanIssue(len(items)); err != nil {
		return domain.Invoice{}, err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET status = $2, issued_at = NOW(), updated_at = NOW() WHERE id = $1",
		invoiceID, domain.StatusIssued,
	); err != nil {
		return domain.Invoice{}, fmt.Errorf("issue invoice %d: %w", invoiceID, err)
	}

	updated, err := recomputeInvoiceTx(ctx, tx, invoiceID, domain.StatusIssued)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := commit(ctx, tx, "issue invoice"); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

// CancelInvoice rejects invoices with recorded payments and releases every
// stock reservation held by the invoice's items.
func (r *Repository) CancelInvoice(ctx context.Context, accountID, invoiceID int64) (domain.Invoice, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoiceTx(ctx, tx, accountID, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	payments, err := loadPaymentsTx(ctx, tx, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := inv.Status.CanCancel(len(payments) > 0); err != nil {
		return domain.Invoice{}, err
	}

	items, err := loadInvoiceItemsTx(ctx, tx, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if err := releaseStockTx(ctx, tx, accountID, *item.ProductID, item.ID, item.Quantity); err != nil {
			return domain.Invoice{}, err
		}
	}

	if _, err := tx.Exec(ctx,
		"UPDATE invoices SET status = $2, cancelled_at = NOW(), updated_at = NOW() WHERE id = $1",
		invoiceID, domain.StatusCancelled,
	); err != nil {
		return domain.Invoice{}, fmt.Errorf("cancel invoice %d: %w", invoiceID, err)
	}

	updated, err := recomputeInvoiceTx(ctx, tx, invoiceID, domain.StatusCancelled)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := commit(ctx, tx, "cancel invoice"); err != nil {
		return domain.Invoice{}, err
	}
	return updated, nil
}

// DeleteInvoice removes a draft outright. Anything issued must be cancelled
// instead so the numbering sequence keeps an audit trail.
func (r *Repository) DeleteInvoice(ctx context.Context, accountID, invoiceID int64) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	inv, err := lockInvoiceTx(ctx, tx, accountID, invoiceID)
	if err != nil {
		return err
	}
	if inv.Status != domain.StatusDraft {
		return domain.ErrInvalidInvoiceState
	}

	items, err := loadInvoiceItemsTx(ctx, tx, invoiceID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ProductID == nil {
			continue
		}
		if err := releaseStockTx(ctx, tx, accountID, *item.ProductID, item.ID, item.Quantity); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM invoices WHERE id = $1", invoiceID); err != nil {
		return fmt.Errorf("delete invoice %d: %w", invoiceID, err)
	}
	return commit(ctx, tx, "delete invoice")
}

func (r *Repository) GetInvoice(ctx context.Context, accountID, invoiceID int64) (*domain.Invoice, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1 AND account_id = $2",
		invoiceID, accountID,
	)
	inv, err := scanInvoiceRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice %d: %w", invoiceID, err)
	}

	rows, err := r.pool.Query(ctx,
		"SELECT "+invoiceItemColumns+" FROM invoice_items WHERE invoice_id = $1 ORDER BY id ASC",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("query invoice items %d: %w", invoiceID, err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanInvoiceItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items %d: %w", invoiceID, err)
	}

	payments, err := r.ListInvoicePayments(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	inv.Payments = payments
	return &inv, nil
}

func (r *Repository) ListInvoices(ctx context.Context, accountID int64, filter InvoiceListFilter) ([]domain.Invoice, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)

	conditions := []string{"account_id = $1"}
	args := []any{accountID}
	index := 2

	if status := strings.TrimSpace(filter.Status); status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", index))
		args = append(args, status)
		index++
	}
	if filter.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", index))
		args = append(args, *filter.ClientID)
		index++
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("issue_date >= $%d", index))
		args = append(args, *filter.From)
		index++
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("issue_date <= $%d", index))
		args = append(args, *filter.To)
		index++
	}

	query := fmt.Sprintf(
		"SELECT %s FROM invoices WHERE %s ORDER BY issue_date DESC, id DESC LIMIT $%d OFFSET $%d",
		invoiceColumns, strings.Join(conditions, " AND "), index, index+1,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoiceRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invoices, nil
}

// SetInvoiceDocumentPath records where the rendered artifact was stored.
func (r *Repository) SetInvoiceDocumentPath(ctx context.Context, accountID, invoiceID int64, path string) error {
	cmd, err := r.pool.Exec(ctx,
		"UPDATE invoices SET document_path = $3, updated_at = NOW() WHERE id = $1 AND account_id = $2",
		invoiceID, accountID, path,
	)
	if err != nil {
		return fmt.Errorf("set invoice %d document path: %w", invoiceID, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
