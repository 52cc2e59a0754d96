package projection

import (
	"math"
	"math/rand"
	"testing"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/normalization"
	"prospectiva-engine/internal/trend"
)

// buildFrame constructs a frame from year -> indicator -> value fixtures.
func buildFrame(t *testing.T, columns []string, rows []domain.Row) *normalization.Frame {
	t.Helper()
	frame, err := normalization.Build(rows, columns)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return frame
}

// noiseless returns the tendencial config with volatility forced to zero so
// projected values are exact.
func noiseless() domain.ScenarioConfig {
	cfg := domain.ScenarioConfigTendencial
	cfg.Volatility = 0
	return cfg
}

func TestGenerate_HorizonCorrectness(t *testing.T) {
	frame := buildFrame(t, []string{"Año", "Estudiantes"}, []domain.Row{
		{"Año": 2020, "Estudiantes": 1000},
		{"Año": 2021, "Estudiantes": 1050},
		{"Año": 2022, "Estudiantes": 1100},
	})
	rng := rand.New(rand.NewSource(1))

	points := Generate(frame, trend.Estimate(frame), noiseless(), 7, nil, rng)

	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	for i, p := range points {
		if p.Year != 2023+i {
			t.Errorf("point %d: expected year %d, got %d", i, 2023+i, p.Year)
		}
		if !p.IsProjected() {
			t.Errorf("point %d: expected projected shape", i)
		}
		if p.Sector != domain.SectorGeneral {
			t.Errorf("point %d: expected sector General, got %q", i, p.Sector)
		}
	}
}

func TestGenerate_ZeroHorizonYieldsNoPoints(t *testing.T) {
	frame := buildFrame(t, []string{"Año", "Estudiantes"}, []domain.Row{
		{"Año": 2020, "Estudiantes": 1000},
		{"Año": 2021, "Estudiantes": 1050},
	})
	rng := rand.New(rand.NewSource(1))

	if points := Generate(frame, trend.Estimate(frame), noiseless(), 0, nil, rng); len(points) != 0 {
		t.Errorf("expected no points for horizon 0, got %d", len(points))
	}
}

func TestGenerate_ConcreteScenario(t *testing.T) {
	// 1000/1050/1100 over 2020-2022: slope 50, mean 1050,
	// hist_trend ~= 0.047619; combined growth with scenario 0.02 is
	// ~0.033810; 1100 * 1.033810 ~= 1137.2.
	frame := buildFrame(t, []string{"Año", "Estudiantes"}, []domain.Row{
		{"Año": 2020, "Estudiantes": 1000},
		{"Año": 2021, "Estudiantes": 1050},
		{"Año": 2022, "Estudiantes": 1100},
	})
	rng := rand.New(rand.NewSource(1))

	points := Generate(frame, trend.Estimate(frame), noiseless(), 1, nil, rng)

	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	if points[0].Year != 2023 {
		t.Errorf("expected year 2023, got %d", points[0].Year)
	}
	got := points[0].Values["Estudiantes"]
	if math.Abs(got-1137.2) > 1.0 {
		t.Errorf("expected ~1137.2, got %f", got)
	}
	if m := points[0].Multipliers["Estudiantes"]; m != 1.0 {
		t.Errorf("expected multiplier 1.0, got %f", m)
	}
	if math.Abs(points[0].BaseValue-1100) > 1e-9 {
		t.Errorf("expected base value 1100, got %f", points[0].BaseValue)
	}
}

func TestGenerate_MultiplierComposition(t *testing.T) {
	frame := buildFrame(t, []string{"Año", "Demanda Tecnologia", "Demanda Salud"}, []domain.Row{
		{"Año": 2020, "Demanda Tecnologia": 100, "Demanda Salud": 200},
		{"Año": 2021, "Demanda Tecnologia": 110, "Demanda Salud": 210},
	})
	params := domain.CustomParams{
		{Key: "default", Value: 1.5},
		{Key: "tecnologia", Value: 2.0},
	}
	rng := rand.New(rand.NewSource(1))

	points := Generate(frame, trend.Estimate(frame), noiseless(), 1, params, rng)

	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	// base 1.0 * default 1.5 * tecnologia 2.0
	if m := points[0].Multipliers["Demanda Tecnologia"]; math.Abs(m-3.0) > 1e-9 {
		t.Errorf("Demanda Tecnologia: expected multiplier 3.0, got %f", m)
	}
	// base 1.0 * default 1.5 only
	if m := points[0].Multipliers["Demanda Salud"]; math.Abs(m-1.5) > 1e-9 {
		t.Errorf("Demanda Salud: expected multiplier 1.5, got %f", m)
	}
}

func TestGenerate_FirstMatchingOverrideWins(t *testing.T) {
	frame := buildFrame(t, []string{"Año", "Demanda Tecnologia"}, []domain.Row{
		{"Año": 2020, "Demanda Tecnologia": 100},
		{"Año": 2021, "Demanda Tecnologia": 110},
	})
	// Both keys match the indicator; only the first in stored order applies.
	params := domain.CustomParams{
		{Key: "demanda", Value: 2.0},
		{Key: "tecnologia", Value: 5.0},
	}
	rng := rand.New(rand.NewSource(1))

	points := Generate(frame, trend.Estimate(frame), noiseless(), 1, params, rng)

	if m := points[0].Multipliers["Demanda Tecnologia"]; math.Abs(m-2.0) > 1e-9 {
		t.Errorf("expected first match 2.0 to win, got %f", m)
	}
}

func TestGenerate_NonNegativity(t *testing.T) {
	frame := buildFrame(t, []string{"Año", "Indicador"}, []domain.Row{
		{"Año": 2020, "Indicador": 10},
		{"Año": 2021, "Indicador": 5},
	})
	// Volatility above 1 makes the noise factor dip below zero on some
	// draws; values must still come out floored at 0.
	cfg := domain.ScenarioConfigTendencial
	cfg.Volatility = 5.0
	rng := rand.New(rand.NewSource(99))

	points := Generate(frame, trend.Estimate(frame), cfg, 20, nil, rng)

	for _, p := range points {
		for indicator, v := range p.Values {
			if v < 0 {
				t.Errorf("year %d %s: negative value %f", p.Year, indicator, v)
			}
		}
	}
}

func TestGenerate_ScenarioBaseMultiplierApplied(t *testing.T) {
	frame := buildFrame(t, []string{"Año", "Indicador"}, []domain.Row{
		{"Año": 2020, "Indicador": 100},
		{"Año": 2021, "Indicador": 100},
	})
	cfg := domain.ScenarioConfigOptimista
	cfg.Volatility = 0
	rng := rand.New(rand.NewSource(1))

	points := Generate(frame, trend.Estimate(frame), cfg, 1, nil, rng)

	if m := points[0].Multipliers["Indicador"]; math.Abs(m-1.2) > 1e-9 {
		t.Errorf("expected optimista base multiplier 1.2, got %f", m)
	}
	// flat history: hist trend 0 (slope 0), combined growth 0.0225
	want := 100 * 1.2 * 1.0225
	if got := points[0].Values["Indicador"]; math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, got)
	}
}
