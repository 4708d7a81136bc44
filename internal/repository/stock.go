package repository

import (
	"context"
	"fmt"
	"strings"

	"facture-backend/internal/domain"

	"github.com/jackc/pgx/v5"
)

type stockEntryInsert struct {
	ProductID     int64
	Delta         int
	ResultingQty  int
	Kind          domain.StockEntryKind
	InvoiceItemID *int64
	Reason        *string
}

func insertStockEntryTx(ctx context.Context, tx pgx.Tx, entry stockEntryInsert) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO stock_entries (product_id, delta, resulting_qty, kind, invoice_item_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ProductID, entry.Delta, entry.ResultingQty, entry.Kind, entry.InvoiceItemID, entry.Reason); err != nil {
		return fmt.Errorf("insert stock entry for product %d: %w", entry.ProductID, err)
	}
	return nil
}

// lockProductStockTx takes the row lock every stock mutation serializes on,
// and returns the fresh quantity the guards must be re-checked against.
func lockProductStockTx(ctx context.Context, tx pgx.Tx, accountID, productID int64) (isStocked bool, quantity int, err error) {
	err = tx.QueryRow(ctx, `
		SELECT is_stocked, stock_quantity
		FROM products
		WHERE id = $1 AND account_id = $2
		FOR UPDATE
	`, productID, accountID).Scan(&isStocked, &quantity)
	if isNoRows(err) {
		return false, 0, ErrNotFound
	}
	if err != nil {
		return false, 0, fmt.Errorf("lock product %d: %w", productID, mapConflict(err))
	}
	return isStocked, quantity, nil
}

func setProductStockTx(ctx context.Context, tx pgx.Tx, productID int64, quantity int) error {
	if _, err := tx.Exec(ctx,
		"UPDATE products SET stock_quantity = $2, updated_at = NOW() WHERE id = $1",
		productID, quantity,
	); err != nil {
		return fmt.Errorf("update product %d stock: %w", productID, err)
	}
	return nil
}

// reserveStockTx decrements stock for an invoice item inside the caller's
// transaction. Non-stocked products are a no-op.
func reserveStockTx(ctx context.Context, tx pgx.Tx, accountID, productID, itemID int64, qty int) error {
	isStocked, current, err := lockProductStockTx(ctx, tx, accountID, productID)
	if err != nil {
		return err
	}
	if !isStocked {
		return nil
	}
	if err := domain.ValidateReservation(current, qty); err != nil {
		return err
	}
	remaining := current - qty
	if err := setProductStockTx(ctx, tx, productID, remaining); err != nil {
		return err
	}
	return insertStockEntryTx(ctx, tx, stockEntryInsert{
		ProductID:     productID,
		Delta:         -qty,
		ResultingQty:  remaining,
		Kind:          domain.StockReserve,
		InvoiceItemID: &itemID,
	})
}

// releaseStockTx reverses a reservation (item removed from a draft, or draft
// cancelled before issuance).
func releaseStockTx(ctx context.Context, tx pgx.Tx, accountID, productID, itemID int64, qty int) error {
	isStocked, current, err := lockProductStockTx(ctx, tx, accountID, productID)
	if err != nil {
		return err
	}
	if !isStocked {
		return nil
	}
	restored := current + qty
	if err := setProductStockTx(ctx, tx, productID, restored); err != nil {
		return err
	}
	return insertStockEntryTx(ctx, tx, stockEntryInsert{
		ProductID:     productID,
		Delta:         qty,
		ResultingQty:  restored,
		Kind:          domain.StockRelease,
		InvoiceItemID: &itemID,
	})
}

// AdjustStock applies a manual correction. The guard runs against the locked
// row, so two concurrent adjustments cannot both pass a stale check.
func (r *Repository) AdjustStock(ctx context.Context, accountID, productID int64, delta int, reason string) (*domain.Product, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrMissingReason
	}

	tx, err := r.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	isStocked, current, err := lockProductStockTx(ctx, tx, accountID, productID)
	if err != nil {
		return nil, err
	}
	if !isStocked {
		return nil, fmt.Errorf("product %d is not stocked: %w", productID, domain.ErrInvalidInvoiceState)
	}
	if err := domain.ValidateAdjustment(current, delta); err != nil {
		return nil, err
	}

	updated := current + delta
	if err := setProductStockTx(ctx, tx, productID, updated); err != nil {
		return nil, err
	}
	if err := insertStockEntryTx(ctx, tx, stockEntryInsert{
		ProductID:    productID,
		Delta:        delta,
		ResultingQty: updated,
		Kind:         domain.StockAdjust,
		Reason:       &reason,
	}); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 AND account_id = $2",
		productID, accountID,
	)
	product, err := scanProductRow(row)
	if err != nil {
		return nil, fmt.Errorf("reload product %d: %w", productID, err)
	}
	if err := commit(ctx, tx, "adjust stock"); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) ListStockEntries(ctx context.Context, accountID, productID int64, limit, offset int) ([]domain.StockEntry, error) {
	limit = normalizeLimit(limit)
	offset = normalizeOffset(offset)

	rows, err := r.pool.Query(ctx, `
		SELECT se.id, se.product_id, se.delta, se.resulting_qty, se.kind, se.invoice_item_id, se.reason, se.created_at
		FROM stock_entries se
		JOIN products p ON p.id = se.product_id
		WHERE se.product_id = $1 AND p.account_id = $2
		ORDER BY se.id DESC
		LIMIT $3 OFFSET $4
	`, productID, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list stock entries: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.StockEntry, 0, limit)
	for rows.Next() {
		var entry domain.StockEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ProductID,
			&entry.Delta,
			&entry.ResultingQty,
			&entry.Kind,
			&entry.InvoiceItemID,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock entries: %w", err)
	}
	return entries, nil
}
