package normalization

import (
	"math"
	"sort"

	"prospectiva-engine/internal/domain"
)

// PeriodColumn is the canonical name the detected period column is renamed to.
const PeriodColumn = "periodo"

// Frame is the normalized historical dataset: strictly increasing periods
// plus one value series per indicator, aligned to the periods. NaN marks a
// boundary cell interpolation could not fill. Immutable once built.
type Frame struct {
	periods    []int
	indicators []string // input column order, period column excluded
	series     map[string][]float64
}

// Len returns the number of periods.
func (f *Frame) Len() int {
	return len(f.periods)
}

// Periods returns the periods in ascending order.
func (f *Frame) Periods() []int {
	out := make([]int, len(f.periods))
	copy(out, f.periods)
	return out
}

// LastPeriod returns the highest period in the frame.
func (f *Frame) LastPeriod() int {
	return f.periods[len(f.periods)-1]
}

// Indicators returns indicator names in input column order.
func (f *Frame) Indicators() []string {
	out := make([]string, len(f.indicators))
	copy(out, f.indicators)
	return out
}

// Series returns the value series of one indicator aligned to Periods.
// The second return is false for unknown indicators.
func (f *Frame) Series(indicator string) ([]float64, bool) {
	values, ok := f.series[indicator]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out, true
}

// Value returns the cell for (period, indicator); NaN when the period or the
// indicator is unknown or the cell is a boundary gap.
func (f *Frame) Value(period int, indicator string) float64 {
	i := sort.SearchInts(f.periods, period)
	if i >= len(f.periods) || f.periods[i] != period {
		return math.NaN()
	}
	values, ok := f.series[indicator]
	if !ok {
		return math.NaN()
	}
	return values[i]
}

// LastValues returns the last non-NaN value per indicator. Every indicator in
// the frame has one: columns without any numeric cell are dropped at build.
func (f *Frame) LastValues() map[string]float64 {
	out := make(map[string]float64, len(f.indicators))
	for _, indicator := range f.indicators {
		values := f.series[indicator]
		for i := len(values) - 1; i >= 0; i-- {
			if !math.IsNaN(values[i]) {
				out[indicator] = values[i]
				break
			}
		}
	}
	return out
}

// Rows exports the frame as canonical raw rows: the period under
// PeriodColumn plus one cell per indicator, NaN cells omitted. Feeding the
// result back through Build with Columns yields an equal frame.
func (f *Frame) Rows() []domain.Row {
	rows := make([]domain.Row, 0, len(f.periods))
	for i, period := range f.periods {
		row := domain.Row{PeriodColumn: period}
		for _, indicator := range f.indicators {
			if v := f.series[indicator][i]; !math.IsNaN(v) {
				row[indicator] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Columns returns the canonical column order of Rows output.
func (f *Frame) Columns() []string {
	return append([]string{PeriodColumn}, f.indicators...)
}
