package trend

import (
	"math"

	"prospectiva-engine/internal/normalization"
)

// DefaultRate is the growth rate assumed when an indicator has too little
// history to fit a trend.
const DefaultRate = 0.02

// Clamp bounds for estimated growth rates.
const (
	MinRate = -0.20
	MaxRate = 0.30
)

// Table maps indicator name to a fractional annual growth rate, clamped to
// [MinRate, MaxRate].
type Table map[string]float64

// Rate returns the stored rate for indicator, or DefaultRate when absent.
func (t Table) Rate(indicator string) float64 {
	if rate, ok := t[indicator]; ok {
		return rate
	}
	return DefaultRate
}

// Estimate fits one growth rate per indicator of the frame. A failure on one
// indicator never aborts the table: whatever cannot be fitted gets
// DefaultRate.
func Estimate(frame *normalization.Frame) Table {
	table := make(Table, len(frame.Indicators()))
	for _, indicator := range frame.Indicators() {
		values, _ := frame.Series(indicator)
		table[indicator] = EstimateSeries(values)
	}
	return table
}

// EstimateSeries converts one value series into a bounded annual growth rate.
// The fit is an OLS degree-1 polynomial over the synthetic index 0..n-1 of
// the non-NaN values (periods-elapsed space, not calendar years); the rate is
// slope over mean. Fewer than 2 usable points, a non-positive mean, or a
// non-finite result all yield DefaultRate.
func EstimateSeries(values []float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) < 2 {
		return DefaultRate
	}

	mean := computeMean(clean)
	rate := DefaultRate
	if mean > 0 {
		rate = fitSlope(clean) / mean
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return DefaultRate
	}
	return clampRate(rate)
}

// fitSlope computes the least-squares slope of values against index 0..n-1.
func fitSlope(values []float64) float64 {
	n := float64(len(values))
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// computeMean calculates the arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// clampRate bounds a rate to [MinRate, MaxRate].
func clampRate(rate float64) float64 {
	if rate < MinRate {
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}
