package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

// Generator produces reports from stored scenarios and projection points.
type Generator struct {
	scenarioStore   storage.ScenarioStore
	projectionStore storage.ProjectionStore
	datasetID       string
	now             func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(scenarioStore storage.ScenarioStore, projectionStore storage.ProjectionStore) *Generator {
	return &Generator{
		scenarioStore:   scenarioStore,
		projectionStore: projectionStore,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithDatasetID stamps the dataset fingerprint onto generated reports.
func (g *Generator) WithDatasetID(datasetID string) *Generator {
	g.datasetID = datasetID
	return g
}

// Generate builds the report for one stored scenario.
func (g *Generator) Generate(ctx context.Context, scenarioID string) (*Report, error) {
	scenario, err := g.scenarioStore.GetByID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", scenarioID, err)
	}

	points, err := g.projectionStore.GetByScenarioID(ctx, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("load points for %s: %w", scenarioID, err)
	}

	report := BuildReport(scenario, points, g.datasetID, g.now())
	return report, nil
}

// BuildReport assembles a report from a scenario and its point sequence.
// Points are expected historical-first, both halves ascending by year, the
// shape the engine and the stores both guarantee.
func BuildReport(scenario *domain.Scenario, points []*domain.ProjectionPoint, datasetID string, generatedAt time.Time) *Report {
	report := &Report{
		GeneratedAt:  generatedAt,
		ScenarioID:   scenario.ScenarioID,
		ScenarioType: scenario.Type.String(),
		ScenarioName: scenario.Name,
		DatasetID:    datasetID,
	}

	for _, point := range points {
		if point.IsProjected() {
			report.ProjectedYears++
		} else {
			report.HistoricalYears++
		}
		report.Points = append(report.Points, PointRow{
			Year:        point.Year,
			Values:      point.Values,
			Multipliers: point.Multipliers,
			Projected:   point.IsProjected(),
		})
	}

	report.Indicators = summarizeIndicators(points)
	return report
}

// summarizeIndicators computes first/last/growth per indicator across the
// full span, indicators sorted by name.
func summarizeIndicators(points []*domain.ProjectionPoint) []IndicatorSummary {
	type span struct {
		first, last IndicatorSummary
		seen        bool
	}
	spans := make(map[string]*span)

	for _, point := range points {
		for indicator, value := range point.Values {
			s, ok := spans[indicator]
			if !ok {
				s = &span{}
				spans[indicator] = s
			}
			if !s.seen {
				s.first = IndicatorSummary{FirstYear: point.Year, FirstValue: value}
				s.seen = true
			}
			s.last = IndicatorSummary{LastYear: point.Year, LastValue: value}
		}
	}

	names := make([]string, 0, len(spans))
	for name := range spans {
		names = append(names, name)
	}
	sort.Strings(names)

	summaries := make([]IndicatorSummary, 0, len(names))
	for _, name := range names {
		s := spans[name]
		summary := IndicatorSummary{
			Indicator:  name,
			FirstYear:  s.first.FirstYear,
			LastYear:   s.last.LastYear,
			FirstValue: s.first.FirstValue,
			LastValue:  s.last.LastValue,
		}
		if summary.FirstValue != 0 {
			summary.GrowthPct = (summary.LastValue - summary.FirstValue) / summary.FirstValue * 100
		}
		summaries = append(summaries, summary)
	}
	return summaries
}
