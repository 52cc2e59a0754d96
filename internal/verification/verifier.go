// Package verification re-runs persisted projections and compares the
// recomputed points against what storage holds. With the engine seeded the
// run is deterministic, so a divergence means the stored data no longer
// matches the input it was derived from.
package verification

import (
	"context"
	"fmt"
	"math"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/projection"
	"prospectiva-engine/internal/storage"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and recomputed values.
type FieldDivergence struct {
	Field    string // e.g. "year[2025].values[Estudiantes]"
	Expected any    // stored value
	Actual   any    // recomputed value
}

// ScenarioResult contains the result of verifying a single scenario.
type ScenarioResult struct {
	ScenarioID  string
	Match       bool
	Fallback    bool // recomputation degraded to synthetic data
	Divergences []FieldDivergence
}

// Report contains results for batch verification.
type Report struct {
	TotalScenarios    int
	MatchedScenarios  int
	DivergentScenario int
	Results           []ScenarioResult
}

// Verifier re-projects stored scenarios over a dataset and diffs the output.
// The engine must carry the same seed as the run that produced the stored
// points.
type Verifier struct {
	scenarioStore   storage.ScenarioStore
	projectionStore storage.ProjectionStore
	engine          *projection.Engine

	rows    []domain.Row
	columns []string
	horizon int
}

// NewVerifier creates a Verifier over the dataset the stored points came from.
func NewVerifier(
	scenarioStore storage.ScenarioStore,
	projectionStore storage.ProjectionStore,
	engine *projection.Engine,
	rows []domain.Row,
	columns []string,
	horizon int,
) *Verifier {
	return &Verifier{
		scenarioStore:   scenarioStore,
		projectionStore: projectionStore,
		engine:          engine,
		rows:            rows,
		columns:         columns,
		horizon:         horizon,
	}
}

// VerifyScenario recomputes one scenario's projection and compares it with
// the stored point set.
func (v *Verifier) VerifyScenario(ctx context.Context, scenarioID string) (*ScenarioResult, error) {
	scenario, err := v.scenarioStore.GetByID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", scenarioID, err)
	}

	stored, err := v.projectionStore.GetByScenarioID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load stored points for %s: %w", scenarioID, err)
	}

	res := v.engine.Project(&projection.Input{
		ScenarioID: scenario.ScenarioID,
		Type:       scenario.Type,
		Params:     scenario.Params,
		Rows:       v.rows,
		Columns:    v.columns,
		Horizon:    v.horizon,
	})

	result := &ScenarioResult{
		ScenarioID:  scenarioID,
		Fallback:    res.Fallback,
		Divergences: ComparePoints(stored, res.Points),
	}
	result.Match = len(result.Divergences) == 0
	return result, nil
}

// VerifyAll verifies every stored scenario and returns a batch report.
func (v *Verifier) VerifyAll(ctx context.Context) (*Report, error) {
	scenarios, err := v.scenarioStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}

	report := &Report{TotalScenarios: len(scenarios)}
	for _, scenario := range scenarios {
		result, err := v.VerifyScenario(ctx, scenario.ScenarioID)
		if err != nil {
			return nil, err
		}
		if result.Match {
			report.MatchedScenarios++
		} else {
			report.DivergentScenario++
		}
		report.Results = append(report.Results, *result)
	}
	return report, nil
}

// ComparePoints diffs two point sequences field by field.
func ComparePoints(stored, recomputed []*domain.ProjectionPoint) []FieldDivergence {
	var divergences []FieldDivergence

	if len(stored) != len(recomputed) {
		divergences = append(divergences, FieldDivergence{
			Field:    "len(points)",
			Expected: len(stored),
			Actual:   len(recomputed),
		})
		return divergences
	}

	for i := range stored {
		divergences = append(divergences, comparePoint(stored[i], recomputed[i])...)
	}
	return divergences
}

// comparePoint diffs one stored point against its recomputed counterpart.
func comparePoint(stored, recomputed *domain.ProjectionPoint) []FieldDivergence {
	var divergences []FieldDivergence
	prefix := fmt.Sprintf("year[%d]", stored.Year)

	if stored.Year != recomputed.Year {
		divergences = append(divergences, FieldDivergence{
			Field:    prefix + ".year",
			Expected: stored.Year,
			Actual:   recomputed.Year,
		})
	}
	if stored.Sector != recomputed.Sector {
		divergences = append(divergences, FieldDivergence{
			Field:    prefix + ".sector",
			Expected: stored.Sector,
			Actual:   recomputed.Sector,
		})
	}
	if !floatsEqual(stored.BaseValue, recomputed.BaseValue) {
		divergences = append(divergences, FieldDivergence{
			Field:    prefix + ".base_value",
			Expected: stored.BaseValue,
			Actual:   recomputed.BaseValue,
		})
	}

	divergences = append(divergences, compareValueMap(prefix+".values", stored.Values, recomputed.Values)...)
	divergences = append(divergences, compareValueMap(prefix+".multipliers", stored.Multipliers, recomputed.Multipliers)...)

	return divergences
}

// compareValueMap diffs two indicator maps, reporting missing and extra keys.
func compareValueMap(field string, stored, recomputed map[string]float64) []FieldDivergence {
	var divergences []FieldDivergence

	for indicator, want := range stored {
		got, ok := recomputed[indicator]
		if !ok {
			divergences = append(divergences, FieldDivergence{
				Field:    fmt.Sprintf("%s[%s]", field, indicator),
				Expected: want,
				Actual:   nil,
			})
			continue
		}
		if !floatsEqual(want, got) {
			divergences = append(divergences, FieldDivergence{
				Field:    fmt.Sprintf("%s[%s]", field, indicator),
				Expected: want,
				Actual:   got,
			})
		}
	}
	for indicator, got := range recomputed {
		if _, ok := stored[indicator]; !ok {
			divergences = append(divergences, FieldDivergence{
				Field:    fmt.Sprintf("%s[%s]", field, indicator),
				Expected: nil,
				Actual:   got,
			})
		}
	}
	return divergences
}

func floatsEqual(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
