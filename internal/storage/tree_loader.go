package storage

import (
	"context"
	"time"

	"github.com/virtualpytest/core/pkg/models"
)

// TreeLoader merges every navigation tree for a team+interface (a tree and
// its embedded subtrees, spec §3) into a single UnifiedGraph, the shape
// navcache.Cache actually caches and the pathfinder searches.
type TreeLoader struct {
	trees *NavigationTreeRepository
}

// NewTreeLoader constructs a TreeLoader.
func NewTreeLoader(store *Store) *TreeLoader {
	return &TreeLoader{trees: NewNavigationTreeRepository(store)}
}

// LoadUnifiedGraph implements navcache.TreeLoader.
func (l *TreeLoader) LoadUnifiedGraph(ctx context.Context, teamID, interfaceID string) (*models.UnifiedGraph, error) {
	trees, err := l.trees.ListByInterface(ctx, teamID, interfaceID)
	if err != nil {
		return nil, err
	}

	graph := &models.UnifiedGraph{
		TeamID:      teamID,
		InterfaceID: interfaceID,
		Nodes:       make(map[string]*models.NavNode),
		Adjacency:   make(map[string][]*models.NavEdge),
		BuiltAt:     time.Now(),
	}
	for _, tree := range trees {
		for _, node := range tree.Nodes {
			graph.Nodes[node.ID] = node
		}
		for _, edge := range tree.Edges {
			graph.Adjacency[edge.From] = append(graph.Adjacency[edge.From], edge)
		}
		// The primary tree's root is the one whose root node isn't itself
		// the attachment point of another tree (a subtree root carries a
		// ParentID back into its parent tree).
		if tree.RootNodeID == "" {
			continue
		}
		if root, ok := graph.Nodes[tree.RootNodeID]; ok && root.ParentID == "" && graph.RootNodeID == "" {
			graph.RootNodeID = tree.RootNodeID
		}
	}
	if graph.RootNodeID == "" && len(trees) > 0 {
		graph.RootNodeID = trees[0].RootNodeID
	}
	return graph, nil
}
