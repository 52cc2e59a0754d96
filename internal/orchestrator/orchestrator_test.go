package orchestrator

import (
	"context"
	"io"
	"log"
	"testing"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/projection"
	"prospectiva-engine/internal/storage/memory"
)

func historicalRows() []domain.Row {
	return []domain.Row{
		{"Año": 2020, "Estudiantes": 1000, "Programas": 20},
		{"Año": 2021, "Estudiantes": 1050, "Programas": 21},
		{"Año": 2022, "Estudiantes": 1100, "Programas": 22},
	}
}

func seedScenarios(t *testing.T, store *memory.ScenarioStore) {
	t.Helper()
	ctx := context.Background()
	scenarios := []*domain.Scenario{
		{ScenarioID: "s-tend", Type: domain.ScenarioTendencial, CreatedAt: 1},
		{ScenarioID: "s-opt", Type: domain.ScenarioOptimista, CreatedAt: 2,
			Params: domain.CustomParams{{Key: "default", Value: 1.5}}},
	}
	for _, s := range scenarios {
		if err := store.Insert(ctx, s); err != nil {
			t.Fatalf("seed scenario %s: %v", s.ScenarioID, err)
		}
	}
}

func quietEngine(seed int64) *projection.Engine {
	return projection.NewEngine(projection.Options{
		Logger: log.New(io.Discard, "", 0),
		Seed:   seed,
	})
}

func TestOrchestrator_Run(t *testing.T) {
	scenarioStore := memory.NewScenarioStore()
	projectionStore := memory.NewProjectionStore()
	sampleStore := memory.NewProjectionSampleStore()
	seedScenarios(t, scenarioStore)

	orch := New(Options{
		ScenarioStore:   scenarioStore,
		ProjectionStore: projectionStore,
		SampleStore:     sampleStore,
		Engine:          quietEngine(42),
		Rows:            historicalRows(),
		Columns:         []string{"Año", "Estudiantes", "Programas"},
		DatasetID:       "ds1",
		Horizon:         5,
	})

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.ScenariosProcessed != 2 {
		t.Errorf("expected 2 scenarios processed, got %d", result.ScenariosProcessed)
	}
	if result.Fallbacks != 0 {
		t.Errorf("expected no fallbacks, got %d", result.Fallbacks)
	}
	// 3 historical + 5 projected per scenario
	if result.PointsStored != 16 {
		t.Errorf("expected 16 points stored, got %d", result.PointsStored)
	}
	// 2 indicators per point
	if result.SamplesStored != 32 {
		t.Errorf("expected 32 samples stored, got %d", result.SamplesStored)
	}

	points, _ := projectionStore.GetByScenarioID(context.Background(), "s-opt")
	if len(points) != 8 {
		t.Fatalf("expected 8 points for s-opt, got %d", len(points))
	}
	last := points[len(points)-1]
	if last.Year != 2027 || !last.IsProjected() {
		t.Errorf("unexpected last point: year=%d projected=%v", last.Year, last.IsProjected())
	}
	// optimista base 1.2 * default override 1.5
	if m := last.Multipliers["Estudiantes"]; m != 1.8 {
		t.Errorf("expected combined multiplier 1.8, got %f", m)
	}

	samples, _ := sampleStore.GetByScenarioID(context.Background(), "s-opt")
	if len(samples) != 16 {
		t.Errorf("expected 16 samples for s-opt, got %d", len(samples))
	}
	if samples[0].DatasetID != "ds1" {
		t.Errorf("expected dataset id stamped on samples, got %q", samples[0].DatasetID)
	}
}

func TestOrchestrator_RerunReplacesPoints(t *testing.T) {
	scenarioStore := memory.NewScenarioStore()
	projectionStore := memory.NewProjectionStore()
	seedScenarios(t, scenarioStore)

	opts := Options{
		ScenarioStore:   scenarioStore,
		ProjectionStore: projectionStore,
		Engine:          quietEngine(42),
		Rows:            historicalRows(),
		Columns:         []string{"Año", "Estudiantes", "Programas"},
		Horizon:         5,
	}

	if _, err := New(opts).Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	opts.Horizon = 2
	if _, err := New(opts).Run(context.Background()); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	points, _ := projectionStore.GetByScenarioID(context.Background(), "s-tend")
	if len(points) != 5 {
		t.Errorf("expected rerun to replace points (3 hist + 2 proj), got %d", len(points))
	}
}

func TestOrchestrator_FallbackCounted(t *testing.T) {
	scenarioStore := memory.NewScenarioStore()
	projectionStore := memory.NewProjectionStore()
	seedScenarios(t, scenarioStore)

	orch := New(Options{
		ScenarioStore:   scenarioStore,
		ProjectionStore: projectionStore,
		Engine:          quietEngine(42),
		// No detectable period column: every scenario degrades
		Rows:    []domain.Row{{"Precio": 10}, {"Precio": 12}},
		Columns: []string{"Precio"},
		Horizon: 3,
	})

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Fallbacks != 2 {
		t.Errorf("expected 2 fallbacks, got %d", result.Fallbacks)
	}
	if result.ScenariosProcessed != 2 {
		t.Errorf("fallback runs still count as processed, got %d", result.ScenariosProcessed)
	}
	if result.PointsStored == 0 {
		t.Errorf("fallback output must still be persisted")
	}

	points, _ := projectionStore.GetByScenarioID(context.Background(), "s-tend")
	if len(points) != 13 {
		t.Errorf("expected 10 synthetic + 3 projected points, got %d", len(points))
	}
}

func TestOrchestrator_NoScenariosIsNoop(t *testing.T) {
	orch := New(Options{
		ScenarioStore:   memory.NewScenarioStore(),
		ProjectionStore: memory.NewProjectionStore(),
		Engine:          quietEngine(42),
		Horizon:         3,
	})

	result, err := orch.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ScenariosProcessed != 0 || result.PointsStored != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}
