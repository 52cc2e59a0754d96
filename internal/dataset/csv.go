package dataset

import (
	"encoding/csv"
	"fmt"
	"os"

	"prospectiva-engine/internal/domain"
)

// ReadCSV reads a CSV file with a header row into raw rows. Records may have
// uneven field counts; short rows pad missing cells as empty strings.
func ReadCSV(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	return buildDataset(path, records[0], records[1:])
}
