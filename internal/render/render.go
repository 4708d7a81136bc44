// Package render turns a finalized invoice into a document artifact. The
// renderer never reads storage: it receives an immutable snapshot assembled
// from already-loaded rows, so a slow or failing renderer cannot hold locks
// or corrupt financial state.
package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"facture-backend/internal/domain"
	"facture-backend/internal/money"

	"github.com/shopspring/decimal"
)

// Renderer produces one document from one snapshot. Implementations report
// failures as ordinary errors; callers wrap them as rendering failures
// without touching invoice state.
type Renderer interface {
	Render(ctx context.Context, snapshot Snapshot, out io.Writer) error
	// Extension is the artifact's file extension, without the dot.
	Extension() string
}

type SellerInfo struct {
	CompanyName string
	Address     *string
	TaxID       *string
	Email       string
}

type BuyerInfo struct {
	Name       string
	Address    *string
	City       *string
	PostalCode *string
	Country    string
	TaxID      *string
}

type LineInfo struct {
	Description     string
	Quantity        int
	Unit            string
	UnitPrice       decimal.Decimal
	TaxRate         decimal.Decimal
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal
	TaxAmount       decimal.Decimal
	LineTotal       decimal.Decimal
}

// Snapshot is a self-contained copy of everything a document shows. Once
// built it carries no references back to live models.
type Snapshot struct {
	InvoiceNumber string
	Status        domain.InvoiceStatus
	IssueDate     time.Time
	DueDate       time.Time
	Seller        SellerInfo
	Buyer         BuyerInfo
	Lines         []LineInfo
	Subtotal      decimal.Decimal
	TaxTotal      decimal.Decimal
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	BalanceDue    decimal.Decimal
	Notes         *string
	Terms         *string
	GeneratedAt   time.Time
}

func sellerName(account domain.Account) string {
	if account.BusinessName != nil && *account.BusinessName != "" {
		return *account.BusinessName
	}
	return account.FullName
}

// BuildSnapshot copies invoice, client and account data into a Snapshot and
// cross-checks the stored totals against a fresh computation over the lines.
// A mismatch means the stored rows are inconsistent and must not be printed.
func BuildSnapshot(account domain.Account, client domain.Client, invoice domain.Invoice, now time.Time) (Snapshot, error) {
	lines := make([]LineInfo, 0, len(invoice.Items))
	computed := make([]money.Line, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		lines = append(lines, LineInfo{
			Description:     item.Description,
			Quantity:        item.Quantity,
			Unit:            item.Unit,
			UnitPrice:       item.UnitPrice,
			TaxRate:         item.TaxRate,
			DiscountPercent: item.DiscountPercent,
			Subtotal:        item.Subtotal,
			TaxAmount:       item.TaxAmount,
			LineTotal:       item.LineTotal,
		})
		computed = append(computed, money.Line{
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TaxRate:         item.TaxRate,
			DiscountPercent: item.DiscountPercent,
		})
	}

	_, totals, err := money.ComputeInvoice(computed)
	if err != nil {
		return Snapshot{}, fmt.Errorf("verify invoice %s lines: %w", invoice.InvoiceNumber, err)
	}
	if !totals.Subtotal.Equal(invoice.Subtotal) || !totals.Tax.Equal(invoice.TaxTotal) || !totals.Total.Equal(invoice.Total) {
		return Snapshot{}, fmt.Errorf(
			"invoice %s stored totals diverge from line items (stored %s, computed %s)",
			invoice.InvoiceNumber, invoice.Total, totals.Total,
		)
	}
	if paid := domain.SumPayments(invoice.Payments); !paid.Equal(invoice.AmountPaid) {
		return Snapshot{}, fmt.Errorf(
			"invoice %s stored amount_paid diverges from payments (stored %s, computed %s)",
			invoice.InvoiceNumber, invoice.AmountPaid, paid,
		)
	}

	return Snapshot{
		InvoiceNumber: invoice.InvoiceNumber,
		Status:        invoice.Status,
		IssueDate:     invoice.IssueDate,
		DueDate:       invoice.DueDate,
		Seller: SellerInfo{
			CompanyName: sellerName(account),
			Address:     account.BusinessAddress,
			TaxID:       account.TaxID,
			Email:       account.Email,
		},
		Buyer: BuyerInfo{
			Name:       client.Name,
			Address:    client.Address,
			City:       client.City,
			PostalCode: client.PostalCode,
			Country:    client.Country,
			TaxID:      client.TaxID,
		},
		Lines:       lines,
		Subtotal:    invoice.Subtotal,
		TaxTotal:    invoice.TaxTotal,
		Total:       invoice.Total,
		AmountPaid:  invoice.AmountPaid,
		BalanceDue:  invoice.BalanceDue,
		Notes:       invoice.Notes,
		Terms:       invoice.Terms,
		GeneratedAt: now,
	}, nil
}
