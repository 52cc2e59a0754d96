package domain

import "sort"

// SectorGeneral is the sector label attached to generated projection points.
const SectorGeneral = "General"

// ProjectionPoint is one output row: a historical or projected year.
// Historical rows carry only Year and Values; projected rows additionally
// carry per-indicator combined multipliers, a sector label and the shared
// base value. Corresponds to projection_points table in PostgreSQL.
type ProjectionPoint struct {
	Year        int
	Values      map[string]float64 // indicator -> value, always >= 0
	Multipliers map[string]float64 // indicator -> combined multiplier, nil on historical rows
	Sector      string             // "General" on projected rows
	BaseValue   float64            // mean of last historical values, shared across the point
}

// IsProjected reports whether the point was generated rather than observed.
func (p *ProjectionPoint) IsProjected() bool {
	return p.Multipliers != nil
}

// Indicators returns the point's indicator names in sorted order.
func (p *ProjectionPoint) Indicators() []string {
	names := make([]string, 0, len(p.Values))
	for name := range p.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProjectionSample is one flattened (year, indicator) cell of a projection
// run. Corresponds to projection_samples table in ClickHouse.
type ProjectionSample struct {
	ScenarioID string
	DatasetID  string // fingerprint of the source dataset
	Year       int
	Indicator  string
	Value      float64
	Multiplier float64 // 0 on historical cells
	Projected  bool
	CreatedAt  int64 // Unix timestamp in milliseconds
}

// FlattenPoints expands points into per-indicator samples, indicators sorted
// within each point so output order is deterministic.
func FlattenPoints(scenarioID, datasetID string, points []*ProjectionPoint, createdAt int64) []*ProjectionSample {
	var samples []*ProjectionSample
	for _, pt := range points {
		for _, indicator := range pt.Indicators() {
			s := &ProjectionSample{
				ScenarioID: scenarioID,
				DatasetID:  datasetID,
				Year:       pt.Year,
				Indicator:  indicator,
				Value:      pt.Values[indicator],
				Projected:  pt.IsProjected(),
				CreatedAt:  createdAt,
			}
			if pt.Multipliers != nil {
				s.Multiplier = pt.Multipliers[indicator]
			}
			samples = append(samples, s)
		}
	}
	return samples
}
