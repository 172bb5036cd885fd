package storage

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/Tn-Hub-777/rematcher/models"
)

// Decode parses tabular text into dynamic records. The first line is a
// header row defining column names; subsequent lines become records with
// string values, empty lines are skipped, and short rows are padded with
// empty fields. The header is returned alongside the records so encoding
// can round-trip the original column order.
func Decode(text string) ([]models.Record, []string, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("csv: decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := rows[0]
	var records []models.Record
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		rec := make(models.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, header, nil
}

// Encode renders records as tabular text with the given header row.
// Fields absent from a record encode as empty strings.
func Encode(records []models.Record, columns []string) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	if err := writer.Write(columns); err != nil {
		return "", fmt.Errorf("csv: write header: %w", err)
	}

	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = rec.Str(col)
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("csv: write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("csv: flush: %w", err)
	}
	return sb.String(), nil
}

// Columns derives a header from the first record's keys, sorted for a
// stable order. Empty when there are no records.
func Columns(records []models.Record) []string {
	if len(records) == 0 {
		return nil
	}
	cols := make([]string, 0, len(records[0]))
	for k := range records[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

func isEmptyRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
