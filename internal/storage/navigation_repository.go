package storage

import (
	"context"

	"github.com/virtualpytest/core/pkg/models"
)

// NavigationTreeRepository persists Navigation Trees, the source data the
// Navigation Cache & Pathfinder compiles into an in-memory UnifiedGraph.
type NavigationTreeRepository struct {
	store *Store
}

// NewNavigationTreeRepository constructs a NavigationTreeRepository.
func NewNavigationTreeRepository(store *Store) *NavigationTreeRepository {
	return &NavigationTreeRepository{store: store}
}

// Put upserts a navigation tree.
func (r *NavigationTreeRepository) Put(ctx context.Context, tree *models.NavigationTree) error {
	return r.store.Upsert(ctx, TableNavigationTree, tree.ID, tree)
}

// Get fetches a navigation tree by ID.
func (r *NavigationTreeRepository) Get(ctx context.Context, treeID string) (*models.NavigationTree, error) {
	tree := new(models.NavigationTree)
	if err := r.store.GetByKey(ctx, TableNavigationTree, treeID, tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// ListByInterface returns every tree belonging to a team/interface pair —
// the unit the Navigation Cache & Pathfinder loads and merges into one
// UnifiedGraph per spec §4.2.
func (r *NavigationTreeRepository) ListByInterface(ctx context.Context, teamID, interfaceID string) ([]*models.NavigationTree, error) {
	var trees []*models.NavigationTree
	err := r.store.ListByFilter(ctx, TableNavigationTree, map[string]interface{}{
		"team_id":      teamID,
		"interface_id": interfaceID,
	}, &trees)
	return trees, err
}
