package excel

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"facture-backend/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var clientHeaderAliases = map[string]string{
	"name":        "name",
	"client":      "name",
	"client name": "name",
	"nom":         "name",
	"email":       "email",
	"e mail":      "email",
	"courriel":    "email",
	"phone":       "phone",
	"telephone":   "phone",
	"téléphone":   "phone",
	"address":     "address",
	"adresse":     "address",
	"city":        "city",
	"ville":       "city",
	"postal code": "postal_code",
	"code postal": "postal_code",
	"zip":         "postal_code",
	"country":     "country",
	"pays":        "country",
	"tax id":      "tax_id",
	"vat":         "tax_id",
	"siret":       "tax_id",
	"tva":         "tax_id",
}

var productHeaderAliases = map[string]string{
	"name":           "name",
	"product":        "name",
	"product name":   "name",
	"désignation":    "name",
	"designation":    "name",
	"sku":            "sku",
	"reference":      "sku",
	"référence":      "sku",
	"ref":            "sku",
	"unit price":     "unit_price",
	"price":          "unit_price",
	"prix unitaire":  "unit_price",
	"prix ht":        "unit_price",
	"tax rate":       "tax_rate",
	"vat rate":       "tax_rate",
	"taux tva":       "tax_rate",
	"tva":            "tax_rate",
	"unit":           "unit",
	"unité":          "unit",
	"stock":          "stock_quantity",
	"stock quantity": "stock_quantity",
	"quantité":       "stock_quantity",
	"quantity":       "stock_quantity",
	"qty":            "stock_quantity",
}

// ParseClientRows reads the first sheet of a client import workbook. Rows
// without a name are skipped, any other malformed cell aborts the import
// with a row-numbered error.
func ParseClientRows(reader io.Reader) ([]domain.ClientImportRow, error) {
	rows, colMap, err := openSheet(reader, clientHeaderAliases, []string{"name"})
	if err != nil {
		return nil, err
	}

	result := make([]domain.ClientImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["name"]))
		if name == "" {
			continue
		}

		entry := domain.ClientImportRow{Name: name, Country: "France"}
		entry.Email = optionalCell(cells, colMap, "email")
		entry.Phone = optionalCell(cells, colMap, "phone")
		entry.Address = optionalCell(cells, colMap, "address")
		entry.City = optionalCell(cells, colMap, "city")
		entry.PostalCode = optionalCell(cells, colMap, "postal_code")
		entry.TaxID = optionalCell(cells, colMap, "tax_id")
		if country := optionalCell(cells, colMap, "country"); country != nil {
			entry.Country = *country
		}
		result = append(result, entry)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

// ParseProductRows reads the first sheet of a product import workbook.
// A stock column marks the product as stocked; its absence imports the row
// as a service line with no inventory tracking.
func ParseProductRows(reader io.Reader) ([]domain.ProductImportRow, error) {
	rows, colMap, err := openSheet(reader, productHeaderAliases, []string{"name", "unit_price"})
	if err != nil {
		return nil, err
	}

	result := make([]domain.ProductImportRow, 0, len(rows)-1)
	for index := 1; index < len(rows); index++ {
		cells := rows[index]
		name := strings.TrimSpace(readCell(cells, colMap["name"]))
		if name == "" {
			continue
		}

		price, err := parseDecimalCell(readCell(cells, colMap["unit_price"]))
		if err != nil {
			return nil, fmt.Errorf("row %d invalid unit price: %w", index+1, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("row %d invalid unit price: must not be negative", index+1)
		}

		entry := domain.ProductImportRow{
			Name:      name,
			UnitPrice: price,
			TaxRate:   decimal.NewFromInt(20),
			Unit:      "unit",
		}
		entry.SKU = optionalCell(cells, colMap, "sku")
		if unit := optionalCell(cells, colMap, "unit"); unit != nil {
			entry.Unit = *unit
		}
		if idx, ok := colMap["tax_rate"]; ok {
			raw := strings.TrimSpace(readCell(cells, idx))
			if raw != "" {
				rate, err := parseDecimalCell(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d invalid tax rate: %w", index+1, err)
				}
				entry.TaxRate = rate
			}
		}
		if idx, ok := colMap["stock_quantity"]; ok {
			raw := strings.TrimSpace(readCell(cells, idx))
			if raw != "" {
				qty, err := parseInt(raw)
				if err != nil {
					return nil, fmt.Errorf("row %d invalid stock quantity: %w", index+1, err)
				}
				if qty < 0 {
					return nil, fmt.Errorf("row %d invalid stock quantity: must not be negative", index+1)
				}
				entry.IsStocked = true
				entry.StockQuantity = qty
			}
		}
		result = append(result, entry)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("excel file has no valid data rows")
	}
	return result, nil
}

func openSheet(reader io.Reader, aliases map[string]string, required []string) ([][]string, map[string]int, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("open excel file: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("excel file has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("excel file is empty")
	}

	colMap := mapColumns(rows[0], aliases)
	for _, column := range required {
		if _, ok := colMap[column]; !ok {
			return nil, nil, fmt.Errorf("missing required column: %s", column)
		}
	}
	return rows, colMap, nil
}

func mapColumns(header []string, aliases map[string]string) map[string]int {
	mapped := make(map[string]int)
	for idx, col := range header {
		normalized := normalizeHeader(col)
		if normalized == "" {
			continue
		}
		canonical, ok := aliases[normalized]
		if !ok {
			continue
		}
		if _, exists := mapped[canonical]; !exists {
			mapped[canonical] = idx
		}
	}
	return mapped
}

func normalizeHeader(raw string) string {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "\uFEFF")
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "_", " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

func readCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func optionalCell(row []string, colMap map[string]int, column string) *string {
	idx, ok := colMap[column]
	if !ok {
		return nil
	}
	value := strings.TrimSpace(readCell(row, idx))
	if value == "" {
		return nil
	}
	return &value
}

func parseInt(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, fmt.Errorf("value is empty")
	}
	asFloat, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.Mod(asFloat, 1) != 0 {
		return 0, fmt.Errorf("must be an integer")
	}
	return int(asFloat), nil
}

func parseDecimalCell(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return decimal.Zero, fmt.Errorf("value is empty")
	}
	value = strings.ReplaceAll(value, " ", "")
	value = strings.ReplaceAll(value, "€", "")
	// French exports use a comma decimal separator.
	if strings.Count(value, ",") == 1 && !strings.Contains(value, ".") {
		value = strings.ReplaceAll(value, ",", ".")
	} else {
		value = strings.ReplaceAll(value, ",", "")
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a number")
	}
	return parsed, nil
}
