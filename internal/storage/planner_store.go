package storage

import (
	"context"

	"github.com/virtualpytest/core/pkg/models"
)

// PlannerStore adapts PlanCacheRepository and LearnedMappingRepository to
// the narrow planner.Store interface the AI Plan Builder depends on.
type PlannerStore struct {
	plans    *PlanCacheRepository
	mappings *LearnedMappingRepository
}

// NewPlannerStore constructs a PlannerStore.
func NewPlannerStore(store *Store) *PlannerStore {
	return &PlannerStore{
		plans:    NewPlanCacheRepository(store),
		mappings: NewLearnedMappingRepository(store),
	}
}

func (s *PlannerStore) GetPlanCacheEntry(ctx context.Context, key string) (*models.PlanCacheEntry, error) {
	return s.plans.Get(ctx, key)
}

func (s *PlannerStore) PutPlanCacheEntry(ctx context.Context, entry *models.PlanCacheEntry) error {
	return s.plans.Put(ctx, entry)
}

func (s *PlannerStore) GetLearnedMapping(ctx context.Context, teamID, interfaceID, phrase string) (*models.LearnedMapping, error) {
	return s.mappings.Get(ctx, teamID, interfaceID, phrase)
}

func (s *PlannerStore) PutLearnedMapping(ctx context.Context, m *models.LearnedMapping) error {
	return s.mappings.Put(ctx, m)
}
