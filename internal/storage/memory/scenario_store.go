package memory

import (
	"context"
	"sort"
	"sync"

	"prospectiva-engine/internal/domain"
	"prospectiva-engine/internal/storage"
)

// ScenarioStore is an in-memory implementation of storage.ScenarioStore.
type ScenarioStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Scenario // keyed by scenario_id
}

// NewScenarioStore creates a new in-memory scenario store.
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{
		data: make(map[string]*domain.Scenario),
	}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

// Insert adds a new scenario. Returns ErrDuplicateKey if scenario_id exists.
func (s *ScenarioStore) Insert(_ context.Context, scenario *domain.Scenario) error {
	if scenario == nil || scenario.ScenarioID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[scenario.ScenarioID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[scenario.ScenarioID] = copyScenario(scenario)
	return nil
}

// GetByID retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) GetByID(_ context.Context, scenarioID string) (*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scenario, exists := s.data[scenarioID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyScenario(scenario), nil
}

// List retrieves all scenarios, ordered by created_at then scenario_id ASC.
func (s *ScenarioStore) List(_ context.Context) ([]*domain.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Scenario, 0, len(s.data))
	for _, scenario := range s.data {
		result = append(result, copyScenario(scenario))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ScenarioID < result[j].ScenarioID
	})

	return result, nil
}

// copyScenario deep-copies a scenario so callers cannot mutate stored state.
func copyScenario(s *domain.Scenario) *domain.Scenario {
	out := *s
	if s.Params != nil {
		out.Params = make(domain.CustomParams, len(s.Params))
		copy(out.Params, s.Params)
	}
	return &out
}
