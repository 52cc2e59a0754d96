package synthetic

import (
	"math"
	"math/rand"

	"prospectiva-engine/internal/domain"
)

// Canonical indicators and their baselines for synthetic data.
var baselines = []struct {
	name  string
	value float64
}{
	{"Estudiantes", 1000},
	{"Programas", 20},
	{"Docentes", 250},
}

const (
	historyYears = 10
	jitter       = 0.10 // uniform draw amplitude
	annualGrowth = 0.02 // compounded over future years
)

// Generate produces a synthetic dataset shaped like real engine output: a
// ten year trailing history ending at lastYear plus horizon projected years.
// Historical values are independent draws around the baselines; future
// values compound annual growth on the last historical draw with fresh noise
// per year. There is no failure mode: rng drives every draw and nothing else
// is consulted.
func Generate(horizon int, lastYear int, rng *rand.Rand) []*domain.ProjectionPoint {
	if horizon < 0 {
		horizon = 0
	}
	points := make([]*domain.ProjectionPoint, 0, historyYears+horizon)

	last := make(map[string]float64, len(baselines))
	for i := 0; i < historyYears; i++ {
		year := lastYear - historyYears + 1 + i
		values := make(map[string]float64, len(baselines))
		for _, b := range baselines {
			v := b.value * (1 + uniform(rng, jitter))
			values[b.name] = math.Max(0, v)
			last[b.name] = values[b.name]
		}
		points = append(points, &domain.ProjectionPoint{Year: year, Values: values})
	}

	base := 0.0
	for _, b := range baselines {
		base += last[b.name]
	}
	base /= float64(len(baselines))

	for k := 1; k <= horizon; k++ {
		values := make(map[string]float64, len(baselines))
		multipliers := make(map[string]float64, len(baselines))
		for _, b := range baselines {
			grown := last[b.name] * math.Pow(1+annualGrowth, float64(k))
			values[b.name] = math.Max(0, grown*(1+uniform(rng, jitter)))
			multipliers[b.name] = 1.0
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

// uniform draws from (-amplitude, +amplitude).
func uniform(rng *rand.Rand, amplitude float64) float64 {
	return (rng.Float64()*2 - 1) * amplitude
}
