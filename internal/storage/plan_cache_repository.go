package storage

import (
	"context"
	"time"

	"github.com/virtualpytest/core/pkg/models"
)

// PlanCacheRepository persists Plan Cache Entries on top of the generic
// Persistence adapter.
type PlanCacheRepository struct {
	store *Store
}

// NewPlanCacheRepository constructs a PlanCacheRepository.
func NewPlanCacheRepository(store *Store) *PlanCacheRepository {
	return &PlanCacheRepository{store: store}
}

// Put upserts a cached plan under its fingerprint key.
func (r *PlanCacheRepository) Put(ctx context.Context, entry *models.PlanCacheEntry) error {
	return r.store.Upsert(ctx, TablePlanCache, entry.Key, entry)
}

// Get fetches a cached plan by fingerprint key.
func (r *PlanCacheRepository) Get(ctx context.Context, key string) (*models.PlanCacheEntry, error) {
	entry := new(models.PlanCacheEntry)
	if err := r.store.GetByKey(ctx, TablePlanCache, key, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListByTeam returns every cached plan belonging to teamID.
func (r *PlanCacheRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.PlanCacheEntry, error) {
	var entries []*models.PlanCacheEntry
	err := r.store.ListByFilter(ctx, TablePlanCache, map[string]interface{}{"team_id": teamID}, &entries)
	return entries, err
}

// EvictStale removes cached plans last used before cutoff, implementing
// the plan cache's own retention sweep alongside the Execution Record one.
func (r *PlanCacheRepository) EvictStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.store.DeleteOlderThan(ctx, TablePlanCache, cutoff)
}
