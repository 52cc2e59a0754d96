package reporting

import "time"

// Report is the rendered view of one scenario's projection run: the stored
// point sequence plus per-indicator summaries.
type Report struct {
	// Metadata
	GeneratedAt  time.Time
	ScenarioID   string
	ScenarioType string
	ScenarioName string
	DatasetID    string

	// Outcome of the run that produced the points. Only known when the
	// report is built straight from an engine result; reports rebuilt
	// from storage leave these zero.
	Fallback bool
	Reason   string

	HistoricalYears int
	ProjectedYears  int

	// Points in output order: historical ascending, then projected ascending.
	Points []PointRow

	// Per-indicator summaries over the full span.
	Indicators []IndicatorSummary
}

// PointRow is one year of the report.
type PointRow struct {
	Year        int
	Values      map[string]float64
	Multipliers map[string]float64 // nil on historical rows
	Projected   bool
}

// IndicatorSummary describes one indicator across the report's span.
type IndicatorSummary struct {
	Indicator  string
	FirstYear  int
	LastYear   int
	FirstValue float64
	LastValue  float64
	GrowthPct  float64 // (last - first) / first * 100, 0 when first == 0
}
