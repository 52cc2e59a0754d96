package reporting

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
	"prospectiva-engine/internal/storage/memory"
)

func seedStores(t *testing.T) (*memory.ScenarioStore, *memory.ProjectionStore) {
	t.Helper()
	ctx := context.Background()

	scenarioStore := memory.NewScenarioStore()
	err := scenarioStore.Insert(ctx, &domain.Scenario{
		ScenarioID: "s1",
		Type:       domain.ScenarioTendencial,
		Name:       "Tendencial",
		CreatedAt:  1000,
	})
	if err != nil {
		t.Fatalf("seed scenario: %v", err)
	}

	projectionStore := memory.NewProjectionStore()
	points := []*domain.ProjectionPoint{
		{Year: 2021, Values: map[string]float64{"Estudiantes": 1000}},
		{Year: 2022, Values: map[string]float64{"Estudiantes": 1100}},
		{
			Year:        2023,
			Values:      map[string]float64{"Estudiantes": 1150},
			Multipliers: map[string]float64{"Estudiantes": 1.0},
			Sector:      domain.SectorGeneral,
			BaseValue:   1100,
		},
	}
	if err := projectionStore.ReplaceForScenario(ctx, "s1", points); err != nil {
		t.Fatalf("seed points: %v", err)
	}

	return scenarioStore, projectionStore
}

func TestGenerator_Generate(t *testing.T) {
	scenarioStore, projectionStore := seedStores(t)
	fixedTime := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

	g := NewGenerator(scenarioStore, projectionStore).
		WithClock(func() time.Time { return fixedTime }).
		WithDatasetID("ds1")

	report, err := g.Generate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("expected fixed clock time, got %v", report.GeneratedAt)
	}
	if report.ScenarioType != "tendencial" || report.DatasetID != "ds1" {
		t.Errorf("unexpected metadata: %+v", report)
	}
	if report.HistoricalYears != 2 || report.ProjectedYears != 1 {
		t.Errorf("expected 2 historical + 1 projected, got %d + %d",
			report.HistoricalYears, report.ProjectedYears)
	}

	if len(report.Indicators) != 1 {
		t.Fatalf("expected 1 indicator summary, got %d", len(report.Indicators))
	}
	s := report.Indicators[0]
	if s.Indicator != "Estudiantes" || s.FirstYear != 2021 || s.LastYear != 2023 {
		t.Errorf("unexpected summary span: %+v", s)
	}
	if math.Abs(s.GrowthPct-15.0) > 1e-9 {
		t.Errorf("expected 15%% growth, got %f", s.GrowthPct)
	}
}

func TestGenerator_UnknownScenario(t *testing.T) {
	scenarioStore, projectionStore := seedStores(t)
	g := NewGenerator(scenarioStore, projectionStore)

	_, err := g.Generate(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRenderCSV(t *testing.T) {
	scenarioStore, projectionStore := seedStores(t)
	g := NewGenerator(scenarioStore, projectionStore)

	report, err := g.Generate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	csv := RenderCSV(report)
	lines := strings.Split(strings.TrimSpace(csv), "\n")

	if lines[0] != "scenario_id,year,indicator,value,multiplier,projected" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "s1,2021,Estudiantes,1000.000000,0.000000,false") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.HasPrefix(lines[3], "s1,2023,Estudiantes,1150.000000,1.000000,true") {
		t.Errorf("unexpected projected row: %s", lines[3])
	}
}

func TestRenderMarkdown(t *testing.T) {
	scenarioStore, projectionStore := seedStores(t)
	fixedTime := time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC)

	g := NewGenerator(scenarioStore, projectionStore).
		WithClock(func() time.Time { return fixedTime })

	report, err := g.Generate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Projection Report: Tendencial",
		"Generated: 2025-01-05T12:00:00Z",
		"| Scenario ID | s1 |",
		"| Projected years | 1 |",
		"## Indicators",
		"| Estudiantes | 2021 | 1000.00 | 2023 | 1150.00 | 15.0 |",
		"## Projected Values",
		"| 2023 | 1150.00 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "Synthetic fallback") {
		t.Errorf("unexpected fallback note in markdown")
	}
}

func TestRenderMarkdown_FallbackNote(t *testing.T) {
	report := BuildReport(
		&domain.Scenario{ScenarioID: "s1", Type: domain.ScenarioTendencial},
		nil, "", time.Now(),
	)
	report.Fallback = true
	report.Reason = "ingestion: no period column detected"

	md := RenderMarkdown(report)
	if !strings.Contains(md, "Synthetic fallback") || !strings.Contains(md, "no period column") {
		t.Errorf("expected fallback note, got:\n%s", md)
	}
}

func TestWriteFiles(t *testing.T) {
	scenarioStore, projectionStore := seedStores(t)
	g := NewGenerator(scenarioStore, projectionStore)

	report, err := g.Generate(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dir := t.TempDir()
	if err := WriteFiles(report, dir); err != nil {
		t.Fatalf("WriteFiles failed: %v", err)
	}

	for _, name := range []string{"REPORT_s1.md", "projections_s1.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to be written: %v", name, err)
		}
	}
}
