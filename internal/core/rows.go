package core

import (
	"errors"
	"strings"
)

// ErrNoValidRows is returned when a file yields no importable rows.
var ErrNoValidRows = errors.New("no valid rows found in file")

// BuildRows pairs each data record with the normalized headers.
//
// Values are paired positionally up to the shorter of the two lengths and
// trimmed. Rows whose name is empty are dropped. Extra or missing cells are
// tolerated without diagnostics.
func BuildRows(data [][]string, headers []string) []ImportRow {
	rows, _ := buildRows(data, nil, headers)
	return rows
}

// buildRows is BuildRows that carries lines[i] along with data[i] for every
// row kept. lines may be nil.
func buildRows(data [][]string, lines []int, headers []string) ([]ImportRow, []int) {
	rows := make([]ImportRow, 0, len(data))
	var kept []int
	for i, record := range data {
		n := min(len(record), len(headers))

		row := make(ImportRow, n)
		for j := 0; j < n; j++ {
			row[headers[j]] = strings.TrimSpace(record[j])
		}

		if strings.TrimSpace(row[FieldName]) == "" {
			continue
		}
		rows = append(rows, row)
		if lines != nil {
			kept = append(kept, lines[i])
		}
	}
	return rows, kept
}

// ParseImportFile turns CSV text into import rows.
// Returns ErrNoValidRows when the file has no header plus data, or when every
// data row lacks a name.
func ParseImportFile(text string) ([]ImportRow, error) {
	rows, _, err := ParseImportFileLines(text)
	return rows, err
}

// ParseImportFileLines is ParseImportFile that also returns the file line
// number of every row, for use in row diagnostics.
func ParseImportFileLines(text string) ([]ImportRow, []int, error) {
	records, numbers := TokenizeLines(text)
	if records == nil {
		return nil, nil, ErrNoValidRows
	}

	headers := NormalizeHeaders(records[0])
	rows, lines := buildRows(records[1:], numbers[1:], headers)
	if len(rows) == 0 {
		return nil, nil, ErrNoValidRows
	}
	return rows, lines, nil
}
