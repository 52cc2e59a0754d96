package normalization

import (
	"testing"

	"prospectiva-engine/internal/domain"
)

func buildFrame(t *testing.T, rows []domain.Row, columns []string) *Frame {
	t.Helper()
	frame, err := Build(rows, columns)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return frame
}

func failedChecks(r *SufficiencyResult) map[string]bool {
	failed := make(map[string]bool)
	for _, c := range r.Checks {
		if !c.Pass {
			failed[c.Name] = true
		}
	}
	return failed
}

func TestCheckFrame_HealthyDataset(t *testing.T) {
	frame := buildFrame(t, []domain.Row{
		{"Año": 2020, "Estudiantes": 1000, "Programas": 20},
		{"Año": 2021, "Estudiantes": 1050, "Programas": 21},
		{"Año": 2022, "Estudiantes": 1100, "Programas": 22},
		{"Año": 2023, "Estudiantes": 1150, "Programas": 23},
	}, []string{"Año", "Estudiantes", "Programas"})

	result := CheckFrame(frame)
	if !result.AllPass {
		t.Errorf("expected all checks to pass, failed: %v", failedChecks(result))
	}
	if len(result.Checks) != 5 {
		t.Errorf("expected 5 checks, got %d", len(result.Checks))
	}
}

func TestCheckFrame_TooFewPeriods(t *testing.T) {
	frame := buildFrame(t, []domain.Row{
		{"Año": 2021, "Estudiantes": 1000},
		{"Año": 2022, "Estudiantes": 1100},
	}, []string{"Año", "Estudiantes"})

	result := CheckFrame(frame)
	if result.AllPass {
		t.Fatalf("expected failure on a 2-period frame")
	}
	if !failedChecks(result)["periods"] {
		t.Errorf("expected the periods check to fail, failed: %v", failedChecks(result))
	}
}

func TestCheckFrame_BoundaryGaps(t *testing.T) {
	// Programas is missing at both boundaries; interpolation cannot reach
	// them, so half its cells stay NaN.
	frame := buildFrame(t, []domain.Row{
		{"Año": 2020, "Estudiantes": 1000},
		{"Año": 2021, "Estudiantes": 1050, "Programas": 21},
		{"Año": 2022, "Estudiantes": 1100, "Programas": 22},
		{"Año": 2023, "Estudiantes": 1150},
	}, []string{"Año", "Estudiantes", "Programas"})

	result := CheckFrame(frame)
	if result.AllPass {
		t.Fatalf("expected failure on boundary gaps")
	}
	if !failedChecks(result)["boundary gap share"] {
		t.Errorf("expected the gap share check to fail, failed: %v", failedChecks(result))
	}
}
