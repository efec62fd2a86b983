package storage

import (
	"context"

	"github.com/virtualpytest/core/pkg/models"
)

// LearnedMappingRepository persists phrase-to-target mappings the AI Plan
// Builder records after a disambiguation is resolved.
type LearnedMappingRepository struct {
	store *Store
}

// NewLearnedMappingRepository constructs a LearnedMappingRepository.
func NewLearnedMappingRepository(store *Store) *LearnedMappingRepository {
	return &LearnedMappingRepository{store: store}
}

func mappingKey(teamID, interfaceID, phrase string) string {
	return teamID + ":" + interfaceID + ":" + phrase
}

// Put upserts a learned mapping keyed by (team, interface, phrase).
func (r *LearnedMappingRepository) Put(ctx context.Context, m *models.LearnedMapping) error {
	return r.store.Upsert(ctx, TableLearnedMapping, mappingKey(m.TeamID, m.InterfaceID, m.Phrase), m)
}

// Get fetches a learned mapping by (team, interface, phrase), returning
// the underlying store's error untranslated when the lookup fails.
func (r *LearnedMappingRepository) Get(ctx context.Context, teamID, interfaceID, phrase string) (*models.LearnedMapping, error) {
	m := new(models.LearnedMapping)
	if err := r.store.GetByKey(ctx, TableLearnedMapping, mappingKey(teamID, interfaceID, phrase), m); err != nil {
		return nil, err
	}
	return m, nil
}

// ListByInterface returns every learned mapping for a team/interface pair.
func (r *LearnedMappingRepository) ListByInterface(ctx context.Context, teamID, interfaceID string) ([]*models.LearnedMapping, error) {
	var mappings []*models.LearnedMapping
	err := r.store.ListByFilter(ctx, TableLearnedMapping, map[string]interface{}{
		"team_id":      teamID,
		"interface_id": interfaceID,
	}, &mappings)
	return mappings, err
}
