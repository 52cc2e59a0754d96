package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

// ScenarioStore implements storage.ScenarioStore using PostgreSQL.
type ScenarioStore struct {
	pool *Pool
}

// NewScenarioStore creates a new ScenarioStore.
func NewScenarioStore(pool *Pool) *ScenarioStore {
	return &ScenarioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

// Insert adds a new scenario. Returns ErrDuplicateKey if scenario_id exists.
// Params serialize to JSONB through CustomParams.MarshalJSON so document
// order survives the round trip.
func (s *ScenarioStore) Insert(ctx context.Context, scenario *domain.Scenario) error {
	if scenario == nil || scenario.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	params, err := json.Marshal(scenario.Params)
	if err != nil {
		return fmt.Errorf("marshal scenario params: %w", err)
	}

	query := `
		INSERT INTO scenarios (
			scenario_id, type, name, params, created_at
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query,
		scenario.ScenarioID,
		string(scenario.Type),
		scenario.Name,
		string(params),
		scenario.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert scenario: %w", err)
	}
	return nil
}

// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByID(ctx context.Context, scenarioID string) (*domain.Scenario, error) {
	query := `
		SELECT scenario_id, type, name, params, created_at
		FROM scenarios
		WHERE scenario_id = $1
	`

	row := s.pool.QueryRow(ctx, query, scenarioID)
	scenario, err := scanScenario(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get scenario by id: %w", err)
	}
	return scenario, nil
}

// List retrieves all scenarios, ordered by created_at then scenario_id ASC.
func (s *ScenarioStore) List(ctx context.Context) ([]*domain.Scenario, error) {
	query := `
		SELECT scenario_id, type, name, params, created_at
		FROM scenarios
		ORDER BY created_at ASC, scenario_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []*domain.Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario row: %w", err)
		}
		scenarios = append(scenarios, scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenario rows: %w", err)
	}

	return scenarios, nil
}

// scanScenario scans one row into a Scenario.
func scanScenario(row pgx.Row) (*domain.Scenario, error) {
	var (
		scenario     domain.Scenario
		scenarioType string
		params       []byte
	)

	err := row.Scan(
		&scenario.ScenarioID,
		&scenarioType,
		&scenario.Name,
		&params,
		&scenario.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	scenario.Type = domain.ScenarioType(scenarioType)
	if len(params) > 0 {
		if err := json.Unmarshal(params, &scenario.Params); err != nil {
			return nil, fmt.Errorf("unmarshal scenario params: %w", err)
		}
	}
	return &scenario, nil
}
