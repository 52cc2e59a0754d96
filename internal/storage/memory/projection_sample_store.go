package memory

import (
	"context"
	"sort"
	"sync"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

// ProjectionSampleStore is an in-memory implementation of storage.ProjectionSampleStore.
type ProjectionSampleStore struct {
	mu   sync.RWMutex
	data []*domain.ProjectionSample
}

// NewProjectionSampleStore creates a new in-memory projection sample store.
func NewProjectionSampleStore() *ProjectionSampleStore {
	return &ProjectionSampleStore{}
}

// Compile-time interface check.
var _ storage.ProjectionSampleStore = (*ProjectionSampleStore)(nil)

// InsertBulk adds multiple samples.
func (s *ProjectionSampleStore) InsertBulk(_ context.Context, samples []*domain.ProjectionSample) error {
	if len(samples) == 0 {
		return nil
	}
	for _, sample := range samples {
		if sample == nil || sample.ScenarioID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sample := range samples {
		copy := *sample
		s.data = append(s.data, &copy)
	}
	return nil
}

// GetByScenarioID retrieves all samples for a scenario, ordered by year then indicator ASC.
func (s *ProjectionSampleStore) GetByScenarioID(_ context.Context, scenarioID string) ([]*domain.ProjectionSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(sample *domain.ProjectionSample) bool {
		return sample.ScenarioID == scenarioID
	}), nil
}

// GetByIndicator retrieves a scenario's samples for one indicator, ordered by year ASC.
func (s *ProjectionSampleStore) GetByIndicator(_ context.Context, scenarioID, indicator string) ([]*domain.ProjectionSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(func(sample *domain.ProjectionSample) bool {
		return sample.ScenarioID == scenarioID && sample.Indicator == indicator
	}), nil
}

// collect copies matching samples sorted by (year, indicator). Callers must
// hold the lock.
func (s *ProjectionSampleStore) collect(match func(*domain.ProjectionSample) bool) []*domain.ProjectionSample {
	var result []*domain.ProjectionSample
	for _, sample := range s.data {
		if match(sample) {
			copy := *sample
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Indicator < result[j].Indicator
	})

	return result
}
