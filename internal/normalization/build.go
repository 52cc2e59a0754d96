package normalization

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"prospectiva-engine/internal/domain"
)

var (
	// ErrNoPeriodColumn reports that no input column qualifies as the time
	// axis. Callers treat it as the trigger for synthetic fallback data.
	ErrNoPeriodColumn = errors.New("no period column detected")

	// ErrEmptyFrame reports that no row survived period coercion.
	ErrEmptyFrame = errors.New("no usable rows after normalization")

	// ErrNoIndicators reports that no column held numeric indicator data.
	ErrNoIndicators = errors.New("no numeric indicator columns")
)

// periodPatterns are the period-indicating column name patterns, scanned in
// priority order.
var periodPatterns = []string{
	"fecha", "date", "año", "anio", "year",
	"periodo", "period", "tiempo", "time",
	"mes", "month", "corte",
}

// Build normalizes raw tabular rows into a Frame:
//
//   - detect the period column (by name pattern, else by numeric range)
//   - coerce periods to integers in [1900, 2100], dropping failed rows
//   - coerce indicator cells, cleaning locale formatting on text cells
//   - collapse duplicate periods by per-column mean
//   - sort by period and drop columns with no numeric cell at all
//   - linearly interpolate interior gaps along the period axis; boundary
//     gaps stay NaN and are excluded downstream
//
// columns fixes the input column order; when empty it is derived from the
// row keys in sorted order.
func Build(rows []domain.Row, columns []string) (*Frame, error) {
	if len(columns) == 0 {
		columns = unionColumns(rows)
	}

	periodCol, err := DetectPeriodColumn(rows, columns)
	if err != nil {
		return nil, err
	}

	indicators := make([]string, 0, len(columns)-1)
	for _, col := range columns {
		if col != periodCol {
			indicators = append(indicators, col)
		}
	}

	// Accumulate cells per period so duplicate periods average out.
	type cellAcc struct {
		sum float64
		n   int
	}
	byPeriod := make(map[int]map[string]*cellAcc)
	for _, row := range rows {
		period, ok := parsePeriod(row[periodCol])
		if !ok || period < minPeriod || period > maxPeriod {
			continue
		}
		cells, ok := byPeriod[period]
		if !ok {
			cells = make(map[string]*cellAcc, len(indicators))
			byPeriod[period] = cells
		}
		for _, indicator := range indicators {
			v, ok := parseCell(row[indicator])
			if !ok {
				continue
			}
			acc := cells[indicator]
			if acc == nil {
				acc = &cellAcc{}
				cells[indicator] = acc
			}
			acc.sum += v
			acc.n++
		}
	}
	if len(byPeriod) == 0 {
		return nil, ErrEmptyFrame
	}

	periods := make([]int, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Ints(periods)

	// Drop columns that never produced a numeric cell.
	kept := make([]string, 0, len(indicators))
	for _, indicator := range indicators {
		for _, period := range periods {
			if acc := byPeriod[period][indicator]; acc != nil && acc.n > 0 {
				kept = append(kept, indicator)
				break
			}
		}
	}
	if len(kept) == 0 {
		return nil, ErrNoIndicators
	}

	series := make(map[string][]float64, len(kept))
	for _, indicator := range kept {
		values := make([]float64, len(periods))
		for i, period := range periods {
			if acc := byPeriod[period][indicator]; acc != nil && acc.n > 0 {
				values[i] = acc.sum / float64(acc.n)
			} else {
				values[i] = math.NaN()
			}
		}
		interpolate(periods, values)
		series[indicator] = values
	}

	return &Frame{periods: periods, indicators: kept, series: series}, nil
}

// Periods outside this range are treated as parse failures.
const (
	minPeriod = 1900
	maxPeriod = 2100
)

// DetectPeriodColumn finds the time-axis column: first by name against the
// priority patterns (case-insensitive whole-token prefixes), then by falling
// back to the first column whose values all parse into [1900, 2100].
func DetectPeriodColumn(rows []domain.Row, columns []string) (string, error) {
	for _, pattern := range periodPatterns {
		for _, col := range columns {
			if matchesPeriodPattern(col, pattern) {
				return col, nil
			}
		}
	}

	for _, col := range columns {
		if allValuesInYearRange(rows, col) {
			return col, nil
		}
	}
	return "", ErrNoPeriodColumn
}

// matchesPeriodPattern reports whether any whole token of the lowercased
// column name starts with the pattern.
func matchesPeriodPattern(column, pattern string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(column), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, token := range tokens {
		if strings.HasPrefix(token, pattern) {
			return true
		}
	}
	return false
}

// allValuesInYearRange reports whether col holds at least one value and every
// value parses as a number in [1900, 2100].
func allValuesInYearRange(rows []domain.Row, col string) bool {
	seen := 0
	for _, row := range rows {
		v, ok := parsePlainNumber(row[col])
		if !ok || v < minPeriod || v > maxPeriod {
			return false
		}
		seen++
	}
	return seen > 0
}

// parsePeriod coerces a period cell to an integer year. Periods parse
// plainly, without locale cleanup.
func parsePeriod(cell any) (int, bool) {
	v, ok := parsePlainNumber(cell)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// parsePlainNumber reads a numeric cell without locale cleanup.
func parsePlainNumber(cell any) (float64, bool) {
	switch v := cell.(type) {
	case float64:
		if math.IsNaN(v) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// parseCell extracts a numeric value from an indicator cell. Text cells go
// through locale cleanup first: % stripped, '.' thousands separators
// stripped, ',' becomes the decimal point.
func parseCell(cell any) (float64, bool) {
	s, isText := cell.(string)
	if !isText {
		return parsePlainNumber(cell)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// interpolate fills interior NaN runs linearly, weighting by period distance.
// Leading and trailing NaNs stay untouched.
func interpolate(periods []int, values []float64) {
	prev := -1
	for i := 0; i < len(values); i++ {
		if math.IsNaN(values[i]) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			span := float64(periods[i] - periods[prev])
			for k := prev + 1; k < i; k++ {
				frac := float64(periods[k]-periods[prev]) / span
				values[k] = values[prev] + (values[i]-values[prev])*frac
			}
		}
		prev = i
	}
}

// unionColumns derives a deterministic column order from raw rows when the
// caller has no header: the sorted union of row keys.
func unionColumns(rows []domain.Row) []string {
	set := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			set[col] = struct{}{}
		}
	}
	columns := make([]string, 0, len(set))
	for col := range set {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}
