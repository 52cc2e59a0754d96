package domain

// ScenarioType identifies one of the fixed macro scenario narratives.
type ScenarioType string

const (
	ScenarioTendencial ScenarioType = "tendencial"
	ScenarioOptimista  ScenarioType = "optimista"
	ScenarioPesimista  ScenarioType = "pesimista"
)

// String returns the string representation of ScenarioType.
func (t ScenarioType) String() string {
	return string(t)
}

// IsValid checks if the scenario type is a known value.
func (t ScenarioType) IsValid() bool {
	return t == ScenarioTendencial || t == ScenarioOptimista || t == ScenarioPesimista
}

// ScenarioConfig represents the fixed parameters of a macro scenario.
type ScenarioConfig struct {
	Type           ScenarioType
	Name           string  // display name
	Description    string  // display description
	BaseMultiplier float64 // baseline multiplier applied to every indicator
	GrowthRate     float64 // annual growth rate averaged with the historical trend
	Volatility     float64 // noise amplitude; draws use the absolute value
}

// Predefined scenario configurations
var (
	ScenarioConfigTendencial = ScenarioConfig{
		Type:           ScenarioTendencial,
		Name:           "Tendencial",
		Description:    "Proyección que sigue la tendencia histórica",
		BaseMultiplier: 1.0,
		GrowthRate:     0.02,
		Volatility:     0.10,
	}

	ScenarioConfigOptimista = ScenarioConfig{
		Type:           ScenarioOptimista,
		Name:           "Optimista",
		Description:    "Escenario de crecimiento acelerado",
		BaseMultiplier: 1.2,
		GrowthRate:     0.045,
		Volatility:     0.15,
	}

	ScenarioConfigPesimista = ScenarioConfig{
		Type:           ScenarioPesimista,
		Name:           "Pesimista",
		Description:    "Escenario de crecimiento contraído",
		BaseMultiplier: 0.8,
		GrowthRate:     0.005,
		Volatility:     -0.05,
	}
)

// ConfigFor returns the configuration for a scenario type.
// Unknown or empty types resolve to the tendencial configuration.
func ConfigFor(t ScenarioType) ScenarioConfig {
	switch t {
	case ScenarioOptimista:
		return ScenarioConfigOptimista
	case ScenarioPesimista:
		return ScenarioConfigPesimista
	default:
		return ScenarioConfigTendencial
	}
}

// Scenario represents a stored scenario record with caller-supplied overrides.
// Corresponds to scenarios table in PostgreSQL.
type Scenario struct {
	ScenarioID string       // PRIMARY KEY
	Type       ScenarioType // tendencial | optimista | pesimista
	Name       string       // display name
	Params     CustomParams // ordered multiplier overrides, stored as JSON
	CreatedAt  int64        // record creation timestamp (ms)
}
