package repository

import (
	"context"
	"fmt"
	"strings"

	"facture-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ProductCreateInput struct {
	Name              string
	Description       *string
	SKU               *string
	UnitPrice         decimal.Decimal
	TaxRate           decimal.Decimal
	Unit              string
	IsStocked         bool
	StockQuantity     int
	LowStockThreshold int
}

type ProductPatchInput struct {
	Name              *string
	Description       *string
	SKU               *string
	UnitPrice         *decimal.Decimal
	TaxRate           *decimal.Decimal
	Unit              *string
	LowStockThreshold *int
	IsActive          *bool
}

type ProductListFilter struct {
	Search       string
	LowStockOnly bool
	ActiveOnly   bool
	Limit        int
	Offset       int
}

const productColumns = `
	id,
	account_id,
	name,
	description,
	sku,
	unit_price::text,
	tax_rate::text,
	unit,
	is_stocked,
	stock_quantity,
	low_stock_threshold,
	is_active,
	created_at,
	updated_at
`

func scanProductRow(row pgx.Row) (domain.Product, error) {
	var (
		product  domain.Product
		rawPrice string
		rawRate  string
	)
	if err := row.Scan(
		&product.ID,
		&product.AccountID,
		&product.Name,
		&product.Description,
		&product.SKU,
		&rawPrice,
		&rawRate,
		&product.Unit,
		&product.IsStocked,
		&product.StockQuantity,
		&product.LowStockThreshold,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return domain.Product{}, err
	}
	var err error
	if product.UnitPrice, err = parseDecimal(rawPrice); err != nil {
		return domain.Product{}, err
	}
	if product.TaxRate, err = parseDecimal(rawRate); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (r *Repository) CreateProduct(ctx context.Context, accountID int64, input ProductCreateInput) (domain.Product, error) {
	if input.TaxRate.IsNegative() {
		return domain.Product{}, domain.ErrInvalidRate
	}
	if input.StockQuantity < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = "unit"
	}
	threshold := input.LowStockThreshold
	if threshold <= 0 {
		threshold = 5
	}

	tx, err := r.begin(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO products (
			account_id, name, description, sku, unit_price, tax_rate, unit,
			is_stocked, stock_quantity, low_stock_threshold
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		accountID,
		strings.TrimSpace(input.Name),
		input.Description,
		input.SKU,
		input.UnitPrice.StringFixed(2),
		input.TaxRate.String(),
		unit,
		input.IsStocked,
		input.StockQuantity,
		threshold,
	)
	product, err := scanProductRow(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	// Opening stock is part of the audit trail like any other change.
	if product.IsStocked && product.StockQuantity > 0 {
		reason := "opening stock"
		if err := insertStockEntryTx(ctx, tx, stockEntryInsert{
			ProductID:    product.ID,
			Delta:        product.StockQuantity,
			ResultingQty: product.StockQuantity,
			Kind:         domain.StockAdjust,
			Reason:       &reason,
		}); err != nil {
			return domain.Product{}, err
		}
	}

	if err := commit(ctx, tx, "create product"); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (r *Repository) GetProduct(ctx context.Context, accountID, productID int64) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 AND account_id = $2",
		productID, accountID,
	)
	product, err := scanProductRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context, accountID int64, filter ProductListFilter) ([]domain.Product, error) {
	limit := normalizeLimit(filter.Limit)
	offset := normalizeOffset(filter.Offset)
	search := strings.TrimSpace(filter.Search)

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE account_id = $1
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR COALESCE(sku, '') ILIKE '%' || $2 || '%')
		  AND (NOT $3 OR (is_stocked AND stock_quantity <= low_stock_threshold))
		  AND (NOT $4 OR is_active)
		ORDER BY name ASC
		LIMIT $5 OFFSET $6
	`, accountID, search, filter.LowStockOnly, filter.ActiveOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// PatchProduct updates catalogue fields. Stock quantity is deliberately not
// patchable here: every stock change goes through the ledger.
func (r *Repository) PatchProduct(ctx context.Context, accountID, productID int64, input ProductPatchInput) (*domain.Product, error) {
	if input.TaxRate != nil && input.TaxRate.IsNegative() {
		return nil, domain.ErrInvalidRate
	}
	var price, rate *string
	if input.UnitPrice != nil {
		v := input.UnitPrice.StringFixed(2)
		price = &v
	}
	if input.TaxRate != nil {
		v := input.TaxRate.String()
		rate = &v
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			sku = COALESCE($5, sku),
			unit_price = COALESCE($6::numeric, unit_price),
			tax_rate = COALESCE($7::numeric, tax_rate),
			unit = COALESCE($8, unit),
			low_stock_threshold = COALESCE($9, low_stock_threshold),
			is_active = COALESCE($10, is_active),
			updated_at = NOW()
		WHERE id = $1 AND account_id = $2
		RETURNING `+productColumns,
		productID,
		accountID,
		input.Name,
		input.Description,
		input.SKU,
		price,
		rate,
		input.Unit,
		input.LowStockThreshold,
		input.IsActive,
	)
	product, err := scanProductRow(row)
	if isNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patch product %d: %w", productID, err)
	}
	return &product, nil
}

// DeactivateProduct soft-deletes: invoices keep their price snapshots, so the
// row itself must survive.
func (r *Repository) DeactivateProduct(ctx context.Context, accountID, productID int64) error {
	cmd, err := r.pool.Exec(ctx,
		"UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND account_id = $2",
		productID, accountID,
	)
	if err != nil {
		return fmt.Errorf("deactivate product %d: %w", productID, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
