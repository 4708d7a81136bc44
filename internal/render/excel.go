package render

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ExcelRenderer writes the invoice as a single-sheet xlsx workbook.
type ExcelRenderer struct{}

func NewExcelRenderer() *ExcelRenderer {
	return &ExcelRenderer{}
}

func (r *ExcelRenderer) Extension() string {
	return "xlsx"
}

func (r *ExcelRenderer) Render(ctx context.Context, snapshot Snapshot, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Sheet1"
	if err := file.SetColWidth(sheet, "A", "A", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := file.SetColWidth(sheet, "B", "G", 14); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	row := 1
	setRow := func(values ...any) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}
	setBoldRow := func(values ...any) error {
		start, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(len(values), row)
		if err != nil {
			return err
		}
		if err := file.SetCellStyle(sheet, start, end, bold); err != nil {
			return err
		}
		return setRow(values...)
	}

	header := []func() error{
		func() error { return setBoldRow("Facture " + snapshot.InvoiceNumber) },
		func() error { return setRow(snapshot.Seller.CompanyName) },
		func() error {
			if snapshot.Seller.Address != nil {
				return setRow(*snapshot.Seller.Address)
			}
			return nil
		},
		func() error {
			if snapshot.Seller.TaxID != nil {
				return setRow("SIRET: " + *snapshot.Seller.TaxID)
			}
			return nil
		},
		func() error { return setRow() },
		func() error { return setBoldRow("Facturé à") },
		func() error { return setRow(snapshot.Buyer.Name) },
		func() error {
			if snapshot.Buyer.Address != nil {
				return setRow(*snapshot.Buyer.Address)
			}
			return nil
		},
		func() error {
			line := snapshot.Buyer.Country
			if snapshot.Buyer.PostalCode != nil && snapshot.Buyer.City != nil {
				line = *snapshot.Buyer.PostalCode + " " + *snapshot.Buyer.City + ", " + line
			}
			return setRow(line)
		},
		func() error { return setRow() },
		func() error {
			return setRow("Date d'émission", snapshot.IssueDate.Format("02/01/2006"),
				"Échéance", snapshot.DueDate.Format("02/01/2006"))
		},
		func() error { return setRow() },
	}
	for _, write := range header {
		if err := write(); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	if err := setBoldRow("Désignation", "Qté", "Unité", "Prix unitaire HT", "Remise %", "TVA %", "Total TTC"); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}
	for _, line := range snapshot.Lines {
		if err := setRow(
			line.Description,
			line.Quantity,
			line.Unit,
			line.UnitPrice.StringFixed(2),
			line.DiscountPercent.String(),
			line.TaxRate.String(),
			line.LineTotal.StringFixed(2),
		); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}

	totals := [][]any{
		{},
		{"Total HT", snapshot.Subtotal.StringFixed(2)},
		{"TVA", snapshot.TaxTotal.StringFixed(2)},
		{"Total TTC", snapshot.Total.StringFixed(2)},
		{"Déjà réglé", snapshot.AmountPaid.StringFixed(2)},
		{"Reste à payer", snapshot.BalanceDue.StringFixed(2)},
	}
	for _, values := range totals {
		if err := setRow(values...); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}

	if snapshot.Terms != nil {
		if err := setRow(); err != nil {
			return fmt.Errorf("write terms: %w", err)
		}
		if err := setRow(*snapshot.Terms); err != nil {
			return fmt.Errorf("write terms: %w", err)
		}
	}
	if snapshot.Notes != nil {
		if err := setRow(*snapshot.Notes); err != nil {
			return fmt.Errorf("write notes: %w", err)
		}
	}

	if err := file.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
