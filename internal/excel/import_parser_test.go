package excel

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()

	file := excelize.NewFile()
	defer file.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func TestParseClientRows(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Nom", "Email", "Ville", "Code Postal", "SIRET"},
		{"Dupont SARL", "contact@dupont.fr", "Lyon", "69001", "123 456 789"},
		{"", "skipped@row.fr", "", "", ""},
		{"Martin et Fils", "", "Paris", "75011", ""},
	})

	rows, err := ParseClientRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Dupont SARL", rows[0].Name)
	require.NotNil(t, rows[0].Email)
	assert.Equal(t, "contact@dupont.fr", *rows[0].Email)
	assert.Equal(t, "France", rows[0].Country)
	require.NotNil(t, rows[0].TaxID)
	assert.Equal(t, "123 456 789", *rows[0].TaxID)

	assert.Equal(t, "Martin et Fils", rows[1].Name)
	assert.Nil(t, rows[1].Email)
}

func TestParseClientRowsMissingNameColumn(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Email", "Ville"},
		{"x@y.fr", "Nice"},
	})

	_, err := ParseClientRows(reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column: name")
}

func TestParseProductRows(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Désignation", "Référence", "Prix unitaire", "Taux TVA", "Stock"},
		{"Clavier mécanique", "KB-01", "89,90", "20", "15"},
		{"Prestation conseil", "", "650.00", "20", ""},
	})

	rows, err := ParseProductRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Clavier mécanique", rows[0].Name)
	assert.Equal(t, "89.9", rows[0].UnitPrice.String())
	assert.True(t, rows[0].IsStocked)
	assert.Equal(t, 15, rows[0].StockQuantity)

	assert.Equal(t, "Prestation conseil", rows[1].Name)
	assert.False(t, rows[1].IsStocked)
	assert.Equal(t, 0, rows[1].StockQuantity)
}

func TestParseProductRowsDefaultsTaxRate(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Name", "Unit Price"},
		{"Widget", "10.00"},
	})

	rows, err := ParseProductRows(reader)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "20", rows[0].TaxRate.String())
	assert.Equal(t, "unit", rows[0].Unit)
}

func TestParseProductRowsRejectsBadPrice(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Name", "Unit Price"},
		{"Widget", "abc"},
	})

	_, err := ParseProductRows(reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2 invalid unit price")
}

func TestParseProductRowsRejectsNegativeStock(t *testing.T) {
	reader := buildWorkbook(t, [][]any{
		{"Name", "Unit Price", "Stock"},
		{"Widget", "10.00", "-3"},
	})

	_, err := ParseProductRows(reader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2 invalid stock quantity")
}
