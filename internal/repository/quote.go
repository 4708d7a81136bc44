package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"facture-backend/internal/domain"
	"facture-backend/internal/money"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type QuoteCreateInput struct {
	ClientID     int64
	IssueDate    time.Time
	ValidityDate time.Time
	Notes        *string
	Terms        *string
	Items        []InvoiceItemInput
}

type QuoteUpdateInput struct {
	ClientID     *int64
	IssueDate    *time.Time
	ValidityDate *time.Time
	Notes        *string
	Terms        *string
}

type QuoteListFilter struct {
	Status   string
	ClientID *int64
	Limit    int
	Offset   int
}

const quoteColumns = `
	id,
	account_id,
	client_id,
	quote_number,
	status,
	issue_date,
	validity_date,
	notes,
	terms,
	subtotal::text,
	tax_total::text,
	total::text,
	converted_invoice_id,
	created_at,
	updated_at
`

const quoteItemColumns = `
	id,
	quote_id,
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

func scanQuoteRow(row pgx.Row) (domain.Quote, error) {
	var (
		quote                         domain.Quote
		rawSubtotal, rawTax, rawTotal string
	)
	if err := row.Scan(
		&quote.ID,
		&quote.AccountID,
		&quote.ClientID,
		&quote.QuoteNumber,
		&quote.Status,
		&quote.IssueDate,
		&quote.ValidityDate,
		&quote.Notes,
		&quote.Terms,
		&rawSubtotal,
		&rawTax,
		&rawTotal,
		&quote.ConvertedInvoiceID,
		&quote.CreatedAt,
		&quote.UpdatedAt,
	); err != nil {
		return domain.Quote{}, err
	}
	var err error
	if quote.Subtotal, err = parseDecimal(rawSubtotal); err != nil {
		return domain.Quote{}, err
	}
	if quote.TaxTotal, err = parseDecimal(rawTax); err != nil {
		return domain.Quote{}, err
	}
	if quote.Total, err = parseDecimal(rawTotal); err != nil {
		return domain.Quote{}, err
	}
	quote.Expired = domain.DeriveQuoteExpired(quote.Status, quote.ValidityDate, time.Now())
	return quote, nil
}

func scanQuoteItemRow(row pgx.Row) (domain.QuoteItem, error) {
	var (
		item                                                    domain.QuoteItem
		rawPrice, rawRate, rawDiscount, rawSub, rawTax, rawLine string
	)
	if err := row.Scan(
		&item.ID,
		&item.QuoteID,
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
		return domain.QuoteItem{}, err
	}
	var err error
	if item.UnitPrice, err = parseDecimal(rawPrice); err != nil {
		return domain.QuoteItem{}, err
	}
	if item.TaxRate, err = parseDecimal(rawRate); err != nil {
		return domain.QuoteItem{}, err
	}
	if item.DiscountPercent, err = parseDecimal(rawDiscount); err != nil {
		return domain.QuoteItem{}, err
	}
	if item.Subtotal, err = parseDecimal(rawSub); err != nil {
		return domain.QuoteItem{}, err
	}
	if item.TaxAmount, err = parseDecimal(rawTax); err != nil {
		return domain.QuoteItem{}, err
	}
	if item.LineTotal, err = parseDecimal(rawLine); err != nil {
		return domain.QuoteItem{}, err
	}
	return item, nil
}

func lockQuoteTx(ctx context.Context, tx pgx.Tx, accountID, quoteID int64) (domain.Quote, error) {
	row := tx.QueryRow(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE id = $1 AND account_id = $2 FOR UPDATE",
		quoteID, accountID,
	)
	quote, err := scanQuoteRow(row)
	if isNoRows(err) {
		return domain.Quote{}, ErrNotFound
	}
	if err != nil {
		return domain.Quote{}, fmt.Errorf("lock quote %d: %w", quoteID, mapConflict(err))
	}
	return quote, nil
}

func loadQuoteItemsTx(ctx context.Context, tx pgx.Tx, quoteID int64) ([]domain.QuoteItem, error) {
	rows, err := tx.Query(ctx,
		"SELECT "+quoteItemColumns+" FROM quote_items WHERE quote_id = $1 ORDER BY id ASC",
		quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("query quote items %d: %w", quoteID, err)
	}
	defer rows.Close()

	items := make([]domain.QuoteItem, 0)
	for rows.Next() {
		item, err := scanQuoteItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote items %d: %w", quoteID, err)
	}
	return items, nil
}

// recomputeQuoteTx recomputes quote totals from the line rows. Unlike
// invoices there are no payments to fold in and no status to advance.
func recomputeQuoteTx(ctx context.Context, tx pgx.Tx, quoteID int64) (domain.Quote, error) {
	items, err := loadQuoteItemsTx(ctx, tx, quoteID)
	if err != nil {
		return domain.Quote{}, err
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
		return domain.Quote{}, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE quotes
		SET subtotal = $2, tax_total = $3, total = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+quoteColumns,
		quoteID,
		totals.Subtotal.StringFixed(money.Scale),
		totals.Tax.StringFixed(money.Scale),
		totals.Total.StringFixed(money.Scale),
	)
	quote, err := scanQuoteRow(row)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("recompute quote %d: %w", quoteID, err)
	}
	quote.Items = items
	return quote, nil
}

// nextQuoteNumberTx serializes DEV numbering on the same account row lock the
// invoice sequence uses.
func nextQuoteNumberTx(ctx context.Context, tx pgx.Tx, accountID int64, issueDate time.Time) (string, error) {
	var locked int64
	if err := tx.QueryRow(ctx,
		"SELECT id FROM accounts WHERE id = $1 FOR UPDATE", accountID,
	).Scan(&locked); err != nil {
		if isNoRows(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("lock account %d: %w", accountID, mapConflict(err))
	}

	prefix := fmt.Sprintf("DEV-%d-", issueDate.Year())
	rows, err := tx.Query(ctx,
		"SELECT quote_number FROM quotes WHERE account_id = $1 AND quote_number LIKE $2 || '%'",
		accountID, prefix,
	)
	if err != nil {
		return "", fmt.Errorf("list quote numbers for prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return "", fmt.Errorf("scan quote number: %w", err)
		}
		existing = append(existing, number)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate quote numbers: %w", err)
	}
	return nextDocumentNumber(prefix, existing), nil
}

// quoteItemFromResolved reuses the invoice item resolver: same snapshot rules,
// same defaults, no stock side effects for quotes.
func quoteItemFromResolved(item domain.InvoiceItem) domain.QuoteItem {
	return domain.QuoteItem{
		ProductID:       item.ProductID,
		Description:     item.Description,
		Quantity:        item.Quantity,
		Unit:            item.Unit,
		UnitPrice:       item.UnitPrice,
		TaxRate:         item.TaxRate,
		DiscountPercent: item.DiscountPercent,
		Subtotal:        item.Subtotal,
		TaxAmount:       item.TaxAmount,
		LineTotal:       item.LineTotal,
	}
}

func insertQuoteItemTx(ctx context.Context, tx pgx.Tx, quoteID int64, item domain.QuoteItem) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO quote_items (
			quote_id, product_id, description, quantity, unit,
			unit_price, tax_rate, discount_percent, subtotal, tax_amount, line_total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		quoteID,
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
	); err != nil {
		return fmt.Errorf("insert quote item: %w", err)
	}
	return nil
}

func (r *Repository) CreateQuote(ctx context.Context, accountID int64, input QuoteCreateInput) (domain.Quote, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	defer tx.Rollback(ctx)

	var clientID int64
	err = tx.QueryRow(ctx,
		"SELECT id FROM clients WHERE id = $1 AND account_id = $2",
		input.ClientID, accountID,
	).Scan(&clientID)
	if isNoRows(err) {
		return domain.Quote{}, ErrNotFound
	}
	if err != nil {
		return domain.Quote{}, fmt.Errorf("verify client %d: %w", input.ClientID, err)
	}

	number, err := nextQuoteNumberTx(ctx, tx, accountID, input.IssueDate)
	if err != nil {
		return domain.Quote{}, err
	}

	var quoteID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO quotes (account_id, client_id, quote_number, status, issue_date, validity_date, notes, terms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`,
		accountID,
		clientID,
		number,
		domain.QuoteDraft,
		input.IssueDate,
		input.ValidityDate,
		input.Notes,
		input.Terms,
	).Scan(&quoteID); err != nil {
		return domain.Quote{}, fmt.Errorf("insert quote: %w", mapConflict(err))
	}

	for _, itemInput := range input.Items {
		resolved, _, err := resolveItemTx(ctx, tx, accountID, itemInput)
		if err != nil {
			return domain.Quote{}, err
		}
		if err := insertQuoteItemTx(ctx, tx, quoteID, quoteItemFromResolved(resolved)); err != nil {
			return domain.Quote{}, err
		}
	}

	quote, err := recomputeQuoteTx(ctx, tx, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := commit(ctx, tx, "create quote"); err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

func (r *Repository) GetQuote(ctx context.Context, accountID, quoteID int64) (*domain.Quote, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+quoteColumns+" FROM quotes WHERE id = $1 AND account_id = $2",
		quoteID, accountID,
	)
	quote, err := scanQuoteRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get quote %d: %w", quoteID, err)
	}

	rows, err := r.pool.Query(ctx,
		"SELECT "+quoteItemColumns+" FROM quote_items WHERE quote_id = $1 ORDER BY id ASC",
		quoteID,
	)
	if err != nil {
		return nil, fmt.Errorf("query quote items %d: %w", quoteID, err)
	}
	defer rows.Close()
	for rows.Next() {
		item, err := scanQuoteItemRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote item: %w", err)
		}
		quote.Items = append(quote.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quote items %d: %w", quoteID, err)
	}
	return &quote, nil
}

func (r *Repository) ListQuotes(ctx context.Context, accountID int64, filter QuoteListFilter) ([]domain.Quote, error) {
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

	query := fmt.Sprintf(
		"SELECT %s FROM quotes WHERE %s ORDER BY issue_date DESC, id DESC LIMIT $%d OFFSET $%d",
		quoteColumns, strings.Join(conditions, " AND "), index, index+1,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]domain.Quote, 0, limit)
	for rows.Next() {
		quote, err := scanQuoteRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return quotes, nil
}

// UpdateQuote edits header fields of a draft. Sent and later quotes are
// frozen; status moves through the send/accept/reject/convert operations.
func (r *Repository) UpdateQuote(ctx context.Context, accountID, quoteID int64, input QuoteUpdateInput) (domain.Quote, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	defer tx.Rollback(ctx)

	quote, err := lockQuoteTx(ctx, tx, accountID, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote.Status != domain.QuoteDraft {
		return domain.Quote{}, domain.ErrInvalidInvoiceState
	}

	if input.ClientID != nil {
		var clientID int64
		err = tx.QueryRow(ctx,
			"SELECT id FROM clients WHERE id = $1 AND account_id = $2",
			*input.ClientID, accountID,
		).Scan(&clientID)
		if isNoRows(err) {
			return domain.Quote{}, ErrNotFound
		}
		if err != nil {
			return domain.Quote{}, fmt.Errorf("verify client %d: %w", *input.ClientID, err)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quotes
		SET
			client_id = COALESCE($2, client_id),
			issue_date = COALESCE($3, issue_date),
			validity_date = COALESCE($4, validity_date),
			notes = COALESCE($5, notes),
			terms = COALESCE($6, terms),
			updated_at = NOW()
		WHERE id = $1
	`, quoteID, input.ClientID, input.IssueDate, input.ValidityDate, input.Notes, input.Terms); err != nil {
		return domain.Quote{}, fmt.Errorf("update quote %d: %w", quoteID, err)
	}

	updated, err := recomputeQuoteTx(ctx, tx, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := commit(ctx, tx, "update quote"); err != nil {
		return domain.Quote{}, err
	}
	return updated, nil
}

func (r *Repository) AddQuoteItem(ctx context.Context, accountID, quoteID int64, input InvoiceItemInput) (domain.Quote, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	defer tx.Rollback(ctx)

	quote, err := lockQuoteTx(ctx, tx, accountID, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if !quote.Status.CanModifyItems() {
		return domain.Quote{}, domain.ErrInvalidInvoiceState
	}

	resolved, _, err := resolveItemTx(ctx, tx, accountID, input)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := insertQuoteItemTx(ctx, tx, quoteID, quoteItemFromResolved(resolved)); err != nil {
		return domain.Quote{}, err
	}

	updated, err := recomputeQuoteTx(ctx, tx, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := commit(ctx, tx, "add quote item"); err != nil {
		return domain.Quote{}, err
	}
	return updated, nil
}

func (r *Repository) RemoveQuoteItem(ctx context.Context, accountID, quoteID, itemID int64) (domain.Quote, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	defer tx.Rollback(ctx)

	quote, err := lockQuoteTx(ctx, tx, accountID, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if !quote.Status.CanModifyItems() {
		return domain.Quote{}, domain.ErrInvalidInvoiceState
	}

	cmd, err := tx.Exec(ctx,
		"DELETE FROM quote_items WHERE id = $1 AND quote_id = $2", itemID, quoteID)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("delete quote item %d: %w", itemID, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.Quote{}, ErrNotFound
	}

	updated, err := recomputeQuoteTx(ctx, tx, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := commit(ctx, tx, "remove quote item"); err != nil {
		return domain.Quote{}, err
	}
	return updated, nil
}

func (r *Repository) setQuoteStatus(ctx context.Context, accountID, quoteID int64, guard func(domain.Quote, int) error, next domain.QuoteStatus, label string) (domain.Quote, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	defer tx.Rollback(ctx)

	quote, err := lockQuoteTx(ctx, tx, accountID, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	items, err := loadQuoteItemsTx(ctx, tx, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := guard(quote, len(items)); err != nil {
		return domain.Quote{}, err
	}

	row := tx.QueryRow(ctx,
		"UPDATE quotes SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING "+quoteColumns,
		quoteID, next,
	)
	updated, err := scanQuoteRow(row)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%s %d: %w", label, quoteID, err)
	}
	updated.Items = items
	if err := commit(ctx, tx, label); err != nil {
		return domain.Quote{}, err
	}
	return updated, nil
}

func (r *Repository) SendQuote(ctx context.Context, accountID, quoteID int64) (domain.Quote, error) {
	return r.setQuoteStatus(ctx, accountID, quoteID,
		func(q domain.Quote, itemCount int) error { return q.Status.CanSend(itemCount) },
		domain.QuoteSent, "send quote")
}

func (r *Repository) AcceptQuote(ctx context.Context, accountID, quoteID int64) (domain.Quote, error) {
	return r.setQuoteStatus(ctx, accountID, quoteID,
		func(q domain.Quote, _ int) error { return q.Status.CanAccept() },
		domain.QuoteAccepted, "accept quote")
}

func (r *Repository) RejectQuote(ctx context.Context, accountID, quoteID int64) (domain.Quote, error) {
	return r.setQuoteStatus(ctx, accountID, quoteID,
		func(q domain.Quote, _ int) error { return q.Status.CanReject() },
		domain.QuoteRejected, "reject quote")
}

// DeleteQuote removes a draft. Anything sent stays on the books.
func (r *Repository) DeleteQuote(ctx context.Context, accountID, quoteID int64) error {
	tx, err := r.begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	quote, err := lockQuoteTx(ctx, tx, accountID, quoteID)
	if err != nil {
		return err
	}
	if quote.Status != domain.QuoteDraft {
		return domain.ErrInvalidInvoiceState
	}
	if _, err := tx.Exec(ctx, "DELETE FROM quotes WHERE id = $1", quoteID); err != nil {
		return fmt.Errorf("delete quote %d: %w", quoteID, err)
	}
	return commit(ctx, tx, "delete quote")
}

// ConvertQuote turns an accepted quote into a draft invoice carrying the
// quote's line snapshots. Stock reservations happen here, when the draft
// invoice items are created, exactly as for a hand-built draft.
func (r *Repository) ConvertQuote(ctx context.Context, accountID, quoteID int64, issueDate, dueDate time.Time) (domain.Invoice, error) {
	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Invoice{}, err
	}
	defer tx.Rollback(ctx)

	quote, err := lockQuoteTx(ctx, tx, accountID, quoteID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := quote.Status.CanConvert(quote.ConvertedInvoiceID != nil); err != nil {
		return domain.Invoice{}, err
	}
	items, err := loadQuoteItemsTx(ctx, tx, quoteID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if len(items) == 0 {
		return domain.Invoice{}, domain.ErrInvalidInvoiceState
	}

	number, err := nextInvoiceNumberTx(ctx, tx, accountID, issueDate)
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
		quote.ClientID,
		number,
		domain.StatusDraft,
		issueDate,
		dueDate,
		quote.Notes,
		quote.Terms,
	).Scan(&invoiceID); err != nil {
		return domain.Invoice{}, fmt.Errorf("insert invoice from quote %d: %w", quoteID, mapConflict(err))
	}

	for _, quoteItem := range items {
		input := InvoiceItemInput{
			ProductID:       quoteItem.ProductID,
			Description:     quoteItem.Description,
			Quantity:        quoteItem.Quantity,
			Unit:            &quoteItem.Unit,
			UnitPrice:       &quoteItem.UnitPrice,
			TaxRate:         &quoteItem.TaxRate,
			DiscountPercent: &quoteItem.DiscountPercent,
		}
		item, product, err := resolveItemTx(ctx, tx, accountID, input)
		if err != nil {
			return domain.Invoice{}, err
		}
		if err := insertItemTx(ctx, tx, accountID, invoiceID, item, product); err != nil {
			return domain.Invoice{}, err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE quotes
		SET status = $2, converted_invoice_id = $3, updated_at = NOW()
		WHERE id = $1
	`, quoteID, domain.QuoteConverted, invoiceID); err != nil {
		return domain.Invoice{}, fmt.Errorf("mark quote %d converted: %w", quoteID, err)
	}

	invoice, err := recomputeInvoiceTx(ctx, tx, invoiceID, domain.StatusDraft)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := commit(ctx, tx, "convert quote"); err != nil {
		return domain.Invoice{}, err
	}
	return invoice, nil
}

// QuoteStats aggregates status counts, the value of accepted quotes and the
// share of sent quotes that ended up accepted or converted.
func (r *Repository) QuoteStats(ctx context.Context, accountID int64) (*domain.QuoteStats, error) {
	var draft, sent, accepted, rejected, converted int
	var rawAccepted string
	if err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'draft')::int,
			COUNT(*) FILTER (WHERE status = 'sent')::int,
			COUNT(*) FILTER (WHERE status = 'accepted')::int,
			COUNT(*) FILTER (WHERE status = 'rejected')::int,
			COUNT(*) FILTER (WHERE status = 'converted')::int,
			COALESCE(SUM(total) FILTER (WHERE status = 'accepted'), 0)::text
		FROM quotes
		WHERE account_id = $1
	`, accountID).Scan(&draft, &sent, &accepted, &rejected, &converted, &rawAccepted); err != nil {
		return nil, fmt.Errorf("quote stats: %w", err)
	}

	counts := map[domain.QuoteStatus]int{
		domain.QuoteDraft:     draft,
		domain.QuoteSent:      sent,
		domain.QuoteAccepted:  accepted,
		domain.QuoteRejected:  rejected,
		domain.QuoteConverted: converted,
	}

	stats := &domain.QuoteStats{StatusCounts: counts, ConversionRate: decimal.Zero}
	var err error
	if stats.TotalAcceptedValue, err = parseDecimal(rawAccepted); err != nil {
		return nil, err
	}

	// Conversion rate over every quote that left draft: accepted and
	// converted count as wins.
	decided := sent + accepted + rejected + converted
	if decided > 0 {
		won := decimal.NewFromInt(int64(accepted + converted))
		stats.ConversionRate = won.Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(decided))).Round(2)
	}
	return stats, nil
}
