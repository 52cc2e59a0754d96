package projection

import (
	"math"
	"math/rand"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/normalization"
	"prospectiva-engine/internal/trend"
)

// Generate produces one projected point per future year, years
// last_historical+1 through last_historical+horizon. A horizon below 1
// yields no points.
//
// Per indicator, the projected value composes:
//   - combined multiplier = scenario base * global override * first matching
//     indicator override (stored order, first match wins)
//   - combined growth = mean of the indicator's historical trend and the
//     scenario growth rate, compounded over the year offset
//   - noise = one uniform draw in (1-|volatility|, 1+|volatility|)
//
// Values are floored at 0. Every point carries the sector label and the base
// value (mean of all indicators' last historical values).
func Generate(frame *normalization.Frame, trends trend.Table, cfg domain.ScenarioConfig, horizon int, params domain.CustomParams, rng *rand.Rand) []*domain.ProjectionPoint {
	indicators := frame.Indicators()
	lastValues := frame.LastValues()
	lastYear := frame.LastPeriod()
	volatility := math.Abs(cfg.Volatility)

	base := 0.0
	if len(lastValues) > 0 {
		for _, v := range lastValues {
			base += v
		}
		base /= float64(len(lastValues))
	}

	var points []*domain.ProjectionPoint
	for k := 1; k <= horizon; k++ {
		values := make(map[string]float64, len(indicators))
		multipliers := make(map[string]float64, len(indicators))
		for _, indicator := range indicators {
			v0, ok := lastValues[indicator]
			if !ok {
				continue
			}

			combined := cfg.BaseMultiplier * params.Default()
			if override, ok := params.IndicatorMultiplier(indicator); ok {
				combined *= override
			}

			growth := (trends.Rate(indicator) + cfg.GrowthRate) / 2
			raw := v0 * combined * math.Pow(1+growth, float64(k))
			noise := 1 + (rng.Float64()*2-1)*volatility

			values[indicator] = math.Max(0, raw*noise)
			multipliers[indicator] = combined
		}
		points = append(points, &domain.ProjectionPoint{
			Year:        lastYear + k,
			Values:      values,
			Multipliers: multipliers,
			Sector:      domain.SectorGeneral,
			BaseValue:   base,
		})
	}
	return points
}
