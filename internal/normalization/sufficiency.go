package normalization

import (
	"fmt"
	"math"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult aggregates the frame quality checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
}

// CheckFrame validates a built frame before projection. Failures are
// advisory: the engine degrades gracefully, but callers should surface them
// so thin datasets are visible rather than silently producing flat trends.
func CheckFrame(f *Frame) *SufficiencyResult {
	result := &SufficiencyResult{AllPass: true}

	add := func(name, threshold, actual string, pass bool) {
		result.Checks = append(result.Checks, SufficiencyCheck{
			Name:      name,
			Threshold: threshold,
			Actual:    actual,
			Pass:      pass,
		})
		if !pass {
			result.AllPass = false
		}
	}

	periods := f.Len()
	add("periods", ">= 3", fmt.Sprintf("%d", periods), periods >= 3)

	indicators := len(f.Indicators())
	add("indicators", ">= 1", fmt.Sprintf("%d", indicators), indicators >= 1)

	// Indicators below 2 points fall back to the default trend.
	thin := 0
	for _, indicator := range f.Indicators() {
		values, _ := f.Series(indicator)
		valid := 0
		for _, v := range values {
			if !math.IsNaN(v) {
				valid++
			}
		}
		if valid < 2 {
			thin++
		}
	}
	add("thin indicators", "0", fmt.Sprintf("%d", thin), thin == 0)

	// Boundary gaps survive interpolation and shrink the historical output.
	gaps := 0
	cells := 0
	for _, indicator := range f.Indicators() {
		values, _ := f.Series(indicator)
		for _, v := range values {
			cells++
			if math.IsNaN(v) {
				gaps++
			}
		}
	}
	gapShare := 0.0
	if cells > 0 {
		gapShare = float64(gaps) / float64(cells)
	}
	add("boundary gap share", "<= 0.20", fmt.Sprintf("%.2f", gapShare), gapShare <= 0.20)

	span := 0
	if periods > 0 {
		span = f.LastPeriod() - f.Periods()[0] + 1
	}
	add("period span", fmt.Sprintf(">= %d", periods), fmt.Sprintf("%d", span), span >= periods)

	return result
}
