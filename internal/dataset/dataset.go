// Package dataset reads tabular files into raw rows for the projection
// engine. Cells stay strings; type and locale coercion is the normalization
// stage's job.
package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"prospectiva-engine/internal/domain"
)

var (
	// ErrEmptyDataset reports a file with no header or no data rows.
	ErrEmptyDataset = errors.New("dataset has no rows")

	// ErrUnsupportedFormat reports a file extension no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
)

// ReadFile dispatches on the file extension: .csv and .xlsx are supported.
func ReadFile(path string) (*domain.Dataset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// buildDataset assembles rows from a header and string records, padding
// short records with empty cells so every row carries every column.
func buildDataset(source string, header []string, records [][]string) (*domain.Dataset, error) {
	if len(header) == 0 || len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
	}

	rows := make([]domain.Row, 0, len(records))
	for _, record := range records {
		row := make(domain.Row, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}

	return &domain.Dataset{Source: source, Columns: columns, Rows: rows}, nil
}
