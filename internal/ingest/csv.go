package ingest

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/Veraticus/finsight/internal/common"
	"github.com/shopspring/decimal"
)

// Required statement columns.
const (
	ColumnDate         = "Date"
	ColumnNarration    = "Narration"
	ColumnDebitAmount  = "Debit Amount"
	ColumnCreditAmount = "Credit Amount"
)

var requiredColumns = []string{ColumnDate, ColumnNarration, ColumnDebitAmount, ColumnCreditAmount}

// Row is one statement line in source-independent form.
type Row struct {
	Date      string
	Narration string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// ReadCSV reads and validates a whole CSV statement. Nothing is returned
// unless the header carries every required column and the file is well formed.
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &common.InputError{Err: err}
	}
	if len(records) == 0 {
		return nil, common.NewMissingColumnsError(requiredColumns)
	}

	header := generateHeaderMap(records[0])

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, common.NewMissingColumnsError(missing)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, Row{
			Date:      record[header[ColumnDate]],
			Narration: strings.TrimSpace(record[header[ColumnNarration]]),
			Debit:     parseAmount(record[header[ColumnDebitAmount]]),
			Credit:    parseAmount(record[header[ColumnCreditAmount]]),
		})
	}

	return rows, nil
}

func generateHeaderMap(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, exists := m[name]; !exists {
			m[name] = i
		}
	}
	return m
}

// parseAmount coerces an amount cell to paise precision. Blank or
// non-numeric cells become zero; thousands separators are tolerated.
func parseAmount(raw string) decimal.Decimal {
	value := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if value == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return amount.Round(2)
}
