package dataset

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"prospectiva-engine/internal/domain"
)

// ReadXLSX reads the first sheet of an XLSX workbook into raw rows. The
// first row is the header.
func ReadXLSX(path string) (*domain.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyDataset
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}

	return buildDataset(path, records[0], records[1:])
}
