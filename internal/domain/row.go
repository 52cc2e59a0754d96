package domain

// Row is one raw tabular input row: column name -> cell value. Cells may be
// strings (possibly locale formatted) or numbers; interpretation happens
// during normalization.
type Row map[string]any

// Dataset couples raw rows with their source column order.
type Dataset struct {
	Source  string   // file path or logical name
	Columns []string // header order as read
	Rows    []Row
}
