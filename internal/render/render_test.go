package render

import (
	"bytes"
	"context"
	"testing"
	"time"

	"facture-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func sampleInvoice() (domain.Account, domain.Client, domain.Invoice) {
	business := "Atelier Numérique"
	address := "12 rue de la Paix"
	account := domain.Account{
		Email:           "contact@atelier.fr",
		FullName:        "Jean Moreau",
		BusinessName:    &business,
		BusinessAddress: &address,
	}
	client := domain.Client{
		Name:    "Dupont SARL",
		Country: "France",
	}
	invoice := domain.Invoice{
		InvoiceNumber: "FACT-2026-00042",
		Status:        domain.StatusIssued,
		IssueDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		Subtotal:      dec("200.00"),
		TaxTotal:      dec("40.00"),
		Total:         dec("240.00"),
		AmountPaid:    dec("100.00"),
		BalanceDue:    dec("140.00"),
		Items: []domain.InvoiceItem{
			{
				Description: "Maintenance mensuelle",
				Quantity:    2,
				Unit:        "unit",
				UnitPrice:   dec("100.00"),
				TaxRate:     dec("20"),
				Subtotal:    dec("200.00"),
				TaxAmount:   dec("40.00"),
				LineTotal:   dec("240.00"),
			},
		},
		Payments: []domain.Payment{
			{
				Amount: dec("100.00"),
				Method: domain.MethodTransfer,
				PaidOn: time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
			},
		},
	}
	return account, client, invoice
}

func TestBuildSnapshot(t *testing.T) {
	account, client, invoice := sampleInvoice()
	now := time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)

	snapshot, err := BuildSnapshot(account, client, invoice, now)
	require.NoError(t, err)

	assert.Equal(t, "FACT-2026-00042", snapshot.InvoiceNumber)
	assert.Equal(t, "Atelier Numérique", snapshot.Seller.CompanyName)
	assert.Equal(t, "Dupont SARL", snapshot.Buyer.Name)
	require.Len(t, snapshot.Lines, 1)
	assert.True(t, snapshot.BalanceDue.Equal(dec("140.00")))
	assert.Equal(t, now, snapshot.GeneratedAt)
}

func TestBuildSnapshotFallsBackToFullName(t *testing.T) {
	account, client, invoice := sampleInvoice()
	account.BusinessName = nil

	snapshot, err := BuildSnapshot(account, client, invoice, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Jean Moreau", snapshot.Seller.CompanyName)
}

func TestBuildSnapshotRejectsInconsistentTotals(t *testing.T) {
	account, client, invoice := sampleInvoice()
	invoice.Total = dec("999.00")

	_, err := BuildSnapshot(account, client, invoice, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diverge")
}

func TestBuildSnapshotRejectsInconsistentPayments(t *testing.T) {
	account, client, invoice := sampleInvoice()
	invoice.Payments = nil

	_, err := BuildSnapshot(account, client, invoice, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount_paid")
}

func TestExcelRendererWritesWorkbook(t *testing.T) {
	account, client, invoice := sampleInvoice()
	snapshot, err := BuildSnapshot(account, client, invoice, time.Now())
	require.NoError(t, err)

	var buf bytes.Buffer
	renderer := NewExcelRenderer()
	require.NoError(t, renderer.Render(context.Background(), snapshot, &buf))
	assert.Equal(t, "xlsx", renderer.Extension())

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows("Sheet1")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Facture FACT-2026-00042", rows[0][0])

	var sawTotal bool
	for _, row := range rows {
		if len(row) >= 2 && row[0] == "Total TTC" {
			sawTotal = true
			assert.Equal(t, "240.00", row[1])
		}
	}
	assert.True(t, sawTotal)
}

func TestExcelRendererHonoursCancelledContext(t *testing.T) {
	account, client, invoice := sampleInvoice()
	snapshot, err := BuildSnapshot(account, client, invoice, time.Now())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err = NewExcelRenderer().Render(ctx, snapshot, &buf)
	require.ErrorIs(t, err, context.Canceled)
}
