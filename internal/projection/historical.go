package projection

import (
	"math"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/normalization"
)

// Historical re-emits the normalized frame in output shape: one
// {year, values} point per period, ascending. Cells that stayed NaN after
// interpolation are omitted; a period with no valid cell at all is dropped
// entirely. Values are floored at 0, matching the policy on projections.
func Historical(frame *normalization.Frame) []*domain.ProjectionPoint {
	indicators := frame.Indicators()
	points := make([]*domain.ProjectionPoint, 0, frame.Len())

	for _, period := range frame.Periods() {
		values := make(map[string]float64, len(indicators))
		for _, indicator := range indicators {
			v := frame.Value(period, indicator)
			if math.IsNaN(v) {
				continue
			}
			values[indicator] = math.Max(0, v)
		}
		if len(values) == 0 {
			continue
		}
		points = append(points, &domain.ProjectionPoint{Year: period, Values: values})
	}
	return points
}
