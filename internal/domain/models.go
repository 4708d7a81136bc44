package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	FullName        string    `json:"full_name"`
	BusinessName    *string   `json:"business_name,omitempty"`
	BusinessAddress *string   `json:"business_address,omitempty"`
	BusinessPhone   *string   `json:"business_phone,omitempty"`
	TaxID           *string   `json:"tax_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Client struct {
	ID         int64     `json:"id"`
	AccountID  int64     `json:"account_id"`
	Name       string    `json:"name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	City       *string   `json:"city,omitempty"`
	PostalCode *string   `json:"postal_code,omitempty"`
	Country    string    `json:"country"`
	TaxID      *string   `json:"tax_id,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Product struct {
	ID                int64           `json:"id"`
	AccountID         int64           `json:"account_id"`
	Name              string          `json:"name"`
	Description       *string         `json:"description,omitempty"`
	SKU               *string         `json:"sku,omitempty"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Unit              string          `json:"unit"`
	IsStocked         bool            `json:"is_stocked"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type Invoice struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"account_id"`
	ClientID      int64           `json:"client_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Status        InvoiceStatus   `json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       time.Time       `json:"due_date"`
	Notes         *string         `json:"notes,omitempty"`
	Terms         *string         `json:"terms,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxTotal      decimal.Decimal `json:"tax_total"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	BalanceDue    decimal.Decimal `json:"balance_due"`
	Overdue       bool            `json:"overdue"`
	DocumentPath  *string         `json:"document_path,omitempty"`
	IssuedAt      *time.Time      `json:"issued_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Items         []InvoiceItem   `json:"items,omitempty"`
	Payments      []Payment       `json:"payments,omitempty"`
}

type InvoiceItem struct {
	ID              int64           `json:"id"`
	InvoiceID       int64           `json:"invoice_id"`
	ProductID       *int64          `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	Unit            string          `json:"unit"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type Quote struct {
	ID                 int64           `json:"id"`
	AccountID          int64           `json:"account_id"`
	ClientID           int64           `json:"client_id"`
	QuoteNumber        string          `json:"quote_number"`
	Status             QuoteStatus     `json:"status"`
	IssueDate          time.Time       `json:"issue_date"`
	ValidityDate       time.Time       `json:"validity_date"`
	Notes              *string         `json:"notes,omitempty"`
	Terms              *string         `json:"terms,omitempty"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxTotal           decimal.Decimal `json:"tax_total"`
	Total              decimal.Decimal `json:"total"`
	Expired            bool            `json:"expired"`
	ConvertedInvoiceID *int64          `json:"converted_invoice_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Items              []QuoteItem     `json:"items,omitempty"`
}

type QuoteItem struct {
	ID              int64           `json:"id"`
	QuoteID         int64           `json:"quote_id"`
	ProductID       *int64          `json:"product_id,omitempty"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	Unit            string          `json:"unit"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxRate         decimal.Decimal `json:"tax_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

type QuoteStats struct {
	StatusCounts       map[QuoteStatus]int `json:"status_counts"`
	TotalAcceptedValue decimal.Decimal     `json:"total_accepted_value"`
	ConversionRate     decimal.Decimal     `json:"conversion_rate"`
}

type Payment struct {
	ID         int64           `json:"id"`
	InvoiceID  int64           `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	PaidOn     time.Time       `json:"paid_on"`
	Method     PaymentMethod   `json:"method"`
	Reference  string          `json:"reference"`
	Notes      *string         `json:"notes,omitempty"`
	ReversedAt *time.Time      `json:"reversed_at,omitempty"`
	ReversalOf *int64          `json:"reversal_of,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Reversed reports whether this payment no longer counts toward amount_paid,
// either because it was reversed or because it is itself a reversal record.
func (p Payment) Reversed() bool {
	return p.ReversedAt != nil || p.ReversalOf != nil
}

type StockEntryKind string

const (
	StockReserve StockEntryKind = "reserve"
	StockRelease StockEntryKind = "release"
	StockAdjust  StockEntryKind = "adjust"
)

type StockEntry struct {
	ID            int64          `json:"id"`
	ProductID     int64          `json:"product_id"`
	Delta         int            `json:"delta"`
	ResultingQty  int            `json:"resulting_qty"`
	Kind          StockEntryKind `json:"kind"`
	InvoiceItemID *int64         `json:"invoice_item_id,omitempty"`
	Reason        *string        `json:"reason,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodCheck    PaymentMethod = "check"
	MethodMobile   PaymentMethod = "mobile"
)

func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch PaymentMethod(raw) {
	case MethodCash, MethodCard, MethodTransfer, MethodCheck, MethodMobile:
		return PaymentMethod(raw), true
	}
	return "", false
}

type DashboardOverview struct {
	TotalInvoices     int             `json:"total_invoices"`
	DraftCount        int             `json:"draft_count"`
	OpenCount         int             `json:"open_count"`
	PaidCount         int             `json:"paid_count"`
	OverdueCount      int             `json:"overdue_count"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	OverdueAmount     decimal.Decimal `json:"overdue_amount"`
	ClientCount       int             `json:"client_count"`
	LowStockCount     int             `json:"low_stock_count"`
}

type MonthlyRevenue struct {
	Month        string          `json:"month"`
	Revenue      decimal.Decimal `json:"revenue"`
	InvoiceCount int             `json:"invoice_count"`
}

type ClientImportRow struct {
	Name       string  `json:"name"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    string  `json:"country"`
	TaxID      *string `json:"tax_id,omitempty"`
}

type ProductImportRow struct {
	Name          string          `json:"name"`
	SKU           *string         `json:"sku,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Unit          string          `json:"unit"`
	IsStocked     bool            `json:"is_stocked"`
	StockQuantity int             `json:"stock_quantity"`
}

type ImportResult struct {
	ClientsCreated  int      `json:"clients_created"`
	ProductsCreated int      `json:"products_created"`
	RowErrors       []string `json:"row_errors,omitempty"`
}
