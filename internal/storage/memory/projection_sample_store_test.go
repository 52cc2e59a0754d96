package memory

import (
	"context"
	"errors"
	"testing"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

func TestProjectionSampleStore_InsertBulkAndGet(t *testing.T) {
	store := NewProjectionSampleStore()
	ctx := context.Background()

	samples := []*domain.ProjectionSample{
		{ScenarioID: "s1", Year: 2024, Indicator: "Programas", Value: 21, Projected: true},
		{ScenarioID: "s1", Year: 2023, Indicator: "Estudiantes", Value: 1100},
		{ScenarioID: "s1", Year: 2023, Indicator: "Programas", Value: 20},
		{ScenarioID: "s2", Year: 2023, Indicator: "Estudiantes", Value: 900},
	}

	if err := store.InsertBulk(ctx, samples); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByScenarioID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByScenarioID failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(got))
	}
	// Ordered by year then indicator
	if got[0].Indicator != "Estudiantes" || got[1].Indicator != "Programas" || got[2].Year != 2024 {
		t.Errorf("unexpected order: %v %v %v", got[0], got[1], got[2])
	}
}

func TestProjectionSampleStore_GetByIndicator(t *testing.T) {
	store := NewProjectionSampleStore()
	ctx := context.Background()

	samples := []*domain.ProjectionSample{
		{ScenarioID: "s1", Year: 2024, Indicator: "Estudiantes", Value: 1150},
		{ScenarioID: "s1", Year: 2023, Indicator: "Estudiantes", Value: 1100},
		{ScenarioID: "s1", Year: 2023, Indicator: "Programas", Value: 20},
	}
	if err := store.InsertBulk(ctx, samples); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByIndicator(ctx, "s1", "Estudiantes")
	if err != nil {
		t.Fatalf("GetByIndicator failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(got))
	}
	if got[0].Year != 2023 || got[1].Year != 2024 {
		t.Errorf("expected year ascending order, got %d then %d", got[0].Year, got[1].Year)
	}
}

func TestProjectionSampleStore_EmptyBulkIsNoop(t *testing.T) {
	store := NewProjectionSampleStore()

	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("empty bulk insert should succeed, got %v", err)
	}
}

func TestProjectionSampleStore_InvalidInput(t *testing.T) {
	store := NewProjectionSampleStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ProjectionSample{{Year: 2023}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for missing scenario id, got %v", err)
	}
}
