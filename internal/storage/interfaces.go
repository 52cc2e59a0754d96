package storage

import (
	"context"

	"prospectiva-engine/internal/domain"
)

// ScenarioStore provides access to scenarios storage.
type ScenarioStore interface {
	// Insert adds a new scenario. Returns ErrDuplicateKey if scenario_id exists.
	Insert(ctx context.Context, s *domain.Scenario) error

	// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, scenarioID string) (*domain.Scenario, error)

	// List retrieves all scenarios, ordered by created_at then scenario_id ASC.
	List(ctx context.Context) ([]*domain.Scenario, error)
}

// ProjectionStore provides access to projection_points storage.
// Points are keyed by (scenario_id, year); a projection rerun replaces the
// scenario's whole point set rather than accumulating.
type ProjectionStore interface {
	// ReplaceForScenario atomically removes the scenario's existing points
	// and stores the given set, one row per year. Returns ErrDuplicateKey
	// if the batch itself contains duplicate years.
	ReplaceForScenario(ctx context.Context, scenarioID string, points []*domain.ProjectionPoint) error

	// GetByScenarioID retrieves all points for a scenario, ordered by year ASC.
	GetByScenarioID(ctx context.Context, scenarioID string) ([]*domain.ProjectionPoint, error)

	// GetByYearRange retrieves points for a scenario within [start, end] (inclusive).
	GetByYearRange(ctx context.Context, scenarioID string, start, end int) ([]*domain.ProjectionPoint, error)

	// DeleteByScenarioID removes all points for a scenario.
	DeleteByScenarioID(ctx context.Context, scenarioID string) error
}

// ProjectionSampleStore provides access to projection_samples storage,
// the flattened per-(year, indicator) analytic series.
type ProjectionSampleStore interface {
	// InsertBulk adds multiple samples.
	InsertBulk(ctx context.Context, samples []*domain.ProjectionSample) error

	// GetByScenarioID retrieves all samples for a scenario, ordered by year then indicator ASC.
	GetByScenarioID(ctx context.Context, scenarioID string) ([]*domain.ProjectionSample, error)

	// GetByIndicator retrieves a scenario's samples for one indicator, ordered by year ASC.
	GetByIndicator(ctx context.Context, scenarioID, indicator string) ([]*domain.ProjectionSample, error)
}
