package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

// ProjectionStore implements storage.ProjectionStore using PostgreSQL.
// Points live in projection_points keyed by (scenario_id, year); value and
// multiplier maps serialize to JSONB.
type ProjectionStore struct {
	pool *Pool
}

// NewProjectionStore creates a new ProjectionStore.
func NewProjectionStore(pool *Pool) *ProjectionStore {
	return &ProjectionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProjectionStore = (*ProjectionStore)(nil)

// ReplaceForScenario atomically replaces the scenario's point set in one
// transaction. Returns ErrDuplicateKey if the batch contains duplicate years
// (the primary key rejects the second insert).
func (s *ProjectionStore) ReplaceForScenario(ctx context.Context, scenarioID string, points []*domain.ProjectionPoint) error {
	if scenarioID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM projection_points WHERE scenario_id = $1`, scenarioID); err != nil {
		return fmt.Errorf("delete existing points: %w", err)
	}

	query := `
		INSERT INTO projection_points (
			scenario_id, year, indicator_values, multipliers, sector, base_value
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, point := range points {
		if point == nil {
			return storage.ErrInvalidInput
		}

		values, err := json.Marshal(point.Values)
		if err != nil {
			return fmt.Errorf("marshal point values: %w", err)
		}
		var multipliers *string
		if point.Multipliers != nil {
			data, err := json.Marshal(point.Multipliers)
			if err != nil {
				return fmt.Errorf("marshal point multipliers: %w", err)
			}
			text := string(data)
			multipliers = &text
		}

		_, err = tx.Exec(ctx, query,
			scenarioID,
			point.Year,
			string(values),
			multipliers,
			point.Sector,
			point.BaseValue,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert projection point: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByScenarioID retrieves all points for a scenario, ordered by year ASC.
func (s *ProjectionStore) GetByScenarioID(ctx context.Context, scenarioID string) ([]*domain.ProjectionPoint, error) {
	query := `
		SELECT year, indicator_values, multipliers, sector, base_value
		FROM projection_points
		WHERE scenario_id = $1
		ORDER BY year ASC
	`

	rows, err := s.pool.Query(ctx, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("get points by scenario id: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// GetByYearRange retrieves points for a scenario within [start, end] (inclusive).
func (s *ProjectionStore) GetByYearRange(ctx context.Context, scenarioID string, start, end int) ([]*domain.ProjectionPoint, error) {
	query := `
		SELECT year, indicator_values, multipliers, sector, base_value
		FROM projection_points
		WHERE scenario_id = $1 AND year >= $2 AND year <= $3
		ORDER BY year ASC
	`

	rows, err := s.pool.Query(ctx, query, scenarioID, start, end)
	if err != nil {
		return nil, fmt.Errorf("get points by year range: %w", err)
	}
	defer rows.Close()

	return scanPoints(rows)
}

// DeleteByScenarioID removes all points for a scenario.
func (s *ProjectionStore) DeleteByScenarioID(ctx context.Context, scenarioID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM projection_points WHERE scenario_id = $1`, scenarioID)
	if err != nil {
		return fmt.Errorf("delete points by scenario id: %w", err)
	}
	return nil
}

// scanPoints scans multiple rows into a slice of ProjectionPoint.
func scanPoints(rows pgx.Rows) ([]*domain.ProjectionPoint, error) {
	var points []*domain.ProjectionPoint

	for rows.Next() {
		var (
			point       domain.ProjectionPoint
			values      []byte
			multipliers *string
		)

		err := rows.Scan(
			&point.Year,
			&values,
			&multipliers,
			&point.Sector,
			&point.BaseValue,
		)
		if err != nil {
			return nil, fmt.Errorf("scan projection point row: %w", err)
		}

		if len(values) > 0 {
			if err := json.Unmarshal(values, &point.Values); err != nil {
				return nil, fmt.Errorf("unmarshal point values: %w", err)
			}
		}
		if multipliers != nil {
			if err := json.Unmarshal([]byte(*multipliers), &point.Multipliers); err != nil {
				return nil, fmt.Errorf("unmarshal point multipliers: %w", err)
			}
		}

		points = append(points, &point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projection point rows: %w", err)
	}

	return points, nil
}
