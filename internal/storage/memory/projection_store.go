package memory

import (
	"context"
	"sort"
	"sync"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

// ProjectionStore is an in-memory implementation of storage.ProjectionStore.
type ProjectionStore struct {
	mu   sync.RWMutex
	data map[string]map[int]*domain.ProjectionPoint // scenario_id -> year -> point
}

// NewProjectionStore creates a new in-memory projection store.
func NewProjectionStore() *ProjectionStore {
	return &ProjectionStore{
		data: make(map[string]map[int]*domain.ProjectionPoint),
	}
}

// Compile-time interface check.
var _ storage.ProjectionStore = (*ProjectionStore)(nil)

// ReplaceForScenario atomically replaces the scenario's point set.
// Returns ErrDuplicateKey if the batch contains duplicate years.
func (s *ProjectionStore) ReplaceForScenario(_ context.Context, scenarioID string, points []*domain.ProjectionPoint) error {
	if scenarioID == "" {
		return storage.ErrInvalidInput
	}

	// Validate the batch before touching stored state so a failed replace
	// leaves the previous set intact.
	byYear := make(map[int]*domain.ProjectionPoint, len(points))
	for _, point := range points {
		if point == nil {
			return storage.ErrInvalidInput
		}
		if _, exists := byYear[point.Year]; exists {
			return storage.ErrDuplicateKey
		}
		byYear[point.Year] = copyPoint(point)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[scenarioID] = byYear
	return nil
}

// GetByScenarioID retrieves all points for a scenario, ordered by year ASC.
func (s *ProjectionStore) GetByScenarioID(_ context.Context, scenarioID string) ([]*domain.ProjectionPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(scenarioID, func(*domain.ProjectionPoint) bool { return true }), nil
}

// GetByYearRange retrieves points for a scenario within [start, end] (inclusive).
func (s *ProjectionStore) GetByYearRange(_ context.Context, scenarioID string, start, end int) ([]*domain.ProjectionPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(scenarioID, func(p *domain.ProjectionPoint) bool {
		return p.Year >= start && p.Year <= end
	}), nil
}

// DeleteByScenarioID removes all points for a scenario.
func (s *ProjectionStore) DeleteByScenarioID(_ context.Context, scenarioID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, scenarioID)
	return nil
}

// collect copies matching points sorted by year. Callers must hold the lock.
func (s *ProjectionStore) collect(scenarioID string, match func(*domain.ProjectionPoint) bool) []*domain.ProjectionPoint {
	var result []*domain.ProjectionPoint
	for _, point := range s.data[scenarioID] {
		if match(point) {
			result = append(result, copyPoint(point))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Year < result[j].Year
	})

	return result
}

// copyPoint deep-copies a point so callers cannot mutate stored state.
func copyPoint(p *domain.ProjectionPoint) *domain.ProjectionPoint {
	out := *p
	if p.Values != nil {
		out.Values = make(map[string]float64, len(p.Values))
		for k, v := range p.Values {
			out.Values[k] = v
		}
	}
	if p.Multipliers != nil {
		out.Multipliers = make(map[string]float64, len(p.Multipliers))
		for k, v := range p.Multipliers {
			out.Multipliers[k] = v
		}
	}
	return &out
}
