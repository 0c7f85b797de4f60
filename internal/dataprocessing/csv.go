package dataprocessing

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"subpulse/internal/errors"
)

// Row is one header-keyed CSV record. Missing columns read as "".
type Row map[string]string

// Get returns the value for column key, or "" when absent.
func (r Row) Get(key string) string {
	return r[key]
}

// readRows reads a header-keyed CSV file into rows. The UTF-8 BOM some
// exports prepend is stripped before parsing. Rows shorter than the header
// are padded with empty strings rather than rejected.
func readRows(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewStorageError("failed to open CSV file", err).
			WithContext("path", path)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewStorageError("failed to read CSV file", err).
			WithContext("path", path)
	}

	// Remove BOM if present
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		content = content[3:]
	}

	reader := csv.NewReader(strings.NewReader(string(content)))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewParsingError("failed to parse CSV file", err).
			WithContext("path", path)
	}

	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		if isEmptyRecord(record) {
			continue
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// isEmptyRecord reports whether every cell is blank.
func isEmptyRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
