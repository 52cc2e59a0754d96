// Package config loads the on-disk run configuration (YAML).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"prospectiva-engine/internal/domain"

	"gopkg.in/yaml.v3"
)

// Horizon bounds. Projections beyond twenty years are pure noise over trend,
// so the loader refuses them.
const (
	MinHorizon = 1
	MaxHorizon = 20

	DefaultHorizon   = 5
	DefaultOutputDir = "out"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Horizon   int              `yaml:"horizon"`
	OutputDir string           `yaml:"output_dir"`
	Seed      int64            `yaml:"seed"` // 0 means non-deterministic
	Dataset   DatasetConfig    `yaml:"dataset"`
	Storage   StorageConfig    `yaml:"storage"`
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

// DatasetConfig points at the tabular input file.
type DatasetConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"` // csv | xlsx; inferred from the extension when empty
}

// StorageConfig selects the persistence backends. With use_memory set the
// DSNs are ignored and everything runs on in-memory stores.
type StorageConfig struct {
	UseMemory     bool   `yaml:"use_memory"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickhouseDSN string `yaml:"clickhouse_dsn"` // optional analytic sink
}

// ScenarioConfig describes one scenario to seed before the run. Params is an
// ordered list because override resolution is first match wins.
type ScenarioConfig struct {
	ID     string        `yaml:"id"` // minted when empty
	Type   string        `yaml:"type"`
	Name   string        `yaml:"name"`
	Params []ParamConfig `yaml:"params"`
}

// ParamConfig is a single multiplier override entry.
type ParamConfig struct {
	Key   string  `yaml:"key"`
	Value float64 `yaml:"value"`
}

// Load reads, defaults and validates a config file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// ApplyDefaults fills zero-valued fields. Load calls it; callers building a
// Config programmatically should too, before Validate.
func (c *Config) ApplyDefaults() {
	if c.Horizon == 0 {
		c.Horizon = DefaultHorizon
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Dataset.Format == "" && c.Dataset.Path != "" {
		c.Dataset.Format = strings.TrimPrefix(filepath.Ext(c.Dataset.Path), ".")
	}
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Horizon < MinHorizon || c.Horizon > MaxHorizon {
		return fmt.Errorf("horizon %d out of range [%d, %d]", c.Horizon, MinHorizon, MaxHorizon)
	}
	if c.Dataset.Path == "" {
		return errors.New("dataset.path is required")
	}
	switch strings.ToLower(c.Dataset.Format) {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("unsupported dataset format %q", c.Dataset.Format)
	}
	if !c.Storage.UseMemory && c.Storage.PostgresDSN == "" {
		return errors.New("storage.postgres_dsn is required unless storage.use_memory is set")
	}
	for i, s := range c.Scenarios {
		if s.Type == "" {
			return fmt.Errorf("scenarios[%d]: type is required", i)
		}
		if !domain.ScenarioType(s.Type).IsValid() {
			return fmt.Errorf("scenarios[%d]: unknown type %q", i, s.Type)
		}
	}
	return nil
}

// ToDomain converts one scenario entry into a storable record. The caller
// supplies the ID when the entry left it empty, and the creation timestamp.
func (s ScenarioConfig) ToDomain(id string, createdAt int64) *domain.Scenario {
	if s.ID != "" {
		id = s.ID
	}
	params := make(domain.CustomParams, 0, len(s.Params))
	for _, p := range s.Params {
		params = append(params, domain.Param{Key: p.Key, Value: p.Value})
	}
	if len(params) == 0 {
		params = nil
	}
	name := s.Name
	if name == "" {
		name = domain.ConfigFor(domain.ScenarioType(s.Type)).Name
	}
	return &domain.Scenario{
		ScenarioID: id,
		Type:       domain.ScenarioType(s.Type),
		Name:       name,
		Params:     params,
		CreatedAt:  createdAt,
	}
}
