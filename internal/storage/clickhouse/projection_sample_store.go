package clickhouse

import (
	"context"
	"fmt"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

// ProjectionSampleStore implements storage.ProjectionSampleStore using ClickHouse.
// Samples are append-only analytic rows; MergeTree does not enforce
// uniqueness and the store does not attempt to.
type ProjectionSampleStore struct {
	conn *Conn
}

// NewProjectionSampleStore creates a new ProjectionSampleStore.
func NewProjectionSampleStore(conn *Conn) *ProjectionSampleStore {
	return &ProjectionSampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ProjectionSampleStore = (*ProjectionSampleStore)(nil)

// InsertBulk adds multiple samples in one batch.
func (s *ProjectionSampleStore) InsertBulk(ctx context.Context, samples []*domain.ProjectionSample) error {
	if len(samples) == 0 {
		return nil
	}
	for _, sample := range samples {
		if sample == nil || sample.ScenarioID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO projection_samples (
			scenario_id, dataset_id, year, indicator, value, multiplier, projected, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sample := range samples {
		err = batch.Append(
			sample.ScenarioID, sample.DatasetID, int32(sample.Year), sample.Indicator,
			sample.Value, sample.Multiplier, sample.Projected, sample.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByScenarioID retrieves all samples for a scenario, ordered by year then indicator ASC.
func (s *ProjectionSampleStore) GetByScenarioID(ctx context.Context, scenarioID string) ([]*domain.ProjectionSample, error) {
	query := `
		SELECT scenario_id, dataset_id, year, indicator, value, multiplier, projected, created_at
		FROM projection_samples
		WHERE scenario_id = ?
		ORDER BY year ASC, indicator ASC
	`

	rows, err := s.conn.Query(ctx, query, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("query by scenario id: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// GetByIndicator retrieves a scenario's samples for one indicator, ordered by year ASC.
func (s *ProjectionSampleStore) GetByIndicator(ctx context.Context, scenarioID, indicator string) ([]*domain.ProjectionSample, error) {
	query := `
		SELECT scenario_id, dataset_id, year, indicator, value, multiplier, projected, created_at
		FROM projection_samples
		WHERE scenario_id = ? AND indicator = ?
		ORDER BY year ASC
	`

	rows, err := s.conn.Query(ctx, query, scenarioID, indicator)
	if err != nil {
		return nil, fmt.Errorf("query by indicator: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// chRows is the subset of driver.Rows the scanners need.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanSamples scans multiple rows.
func scanSamples(rows chRows) ([]*domain.ProjectionSample, error) {
	var samples []*domain.ProjectionSample

	for rows.Next() {
		var (
			sample domain.ProjectionSample
			year   int32
		)

		err := rows.Scan(
			&sample.ScenarioID, &sample.DatasetID, &year, &sample.Indicator,
			&sample.Value, &sample.Multiplier, &sample.Projected, &sample.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan projection sample row: %w", err)
		}

		sample.Year = int(year)
		samples = append(samples, &sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projection sample rows: %w", err)
	}

	return samples, nil
}
