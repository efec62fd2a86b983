package navcache

import (
	"sort"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/models"
)

// Path is an ordered sequence of edges from a start node to a goal node.
type Path struct {
	Edges []*models.NavEdge
}

// TotalActions returns the number of concrete actions the path expands to,
// the quantity the AI Plan Builder budgets against (spec §9 N_actions).
func (p *Path) TotalActions() int {
	n := 0
	for _, e := range p.Edges {
		n += len(e.Actions)
	}
	return n
}

// FindPath runs a weighted BFS (effectively Dijkstra over small integer
// weights) from fromNodeID to toNodeID in the given unified graph,
// returning the lowest-cost path. Ties are broken deterministically by
// sorting candidate edges by (target node ID, edge ID) at each step, so
// the same graph always yields the same path (spec §8 testable property:
// determinism).
func FindPath(graph *models.UnifiedGraph, fromNodeID, toNodeID string) (*Path, error) {
	if _, err := graph.GetNode(fromNodeID); err != nil {
		return nil, apierr.New(apierr.KindNotFound, "start node not found")
	}
	if _, err := graph.GetNode(toNodeID); err != nil {
		return nil, apierr.New(apierr.KindNotFound, "goal node not found")
	}
	if fromNodeID == toNodeID {
		return &Path{}, nil
	}

	type state struct {
		cost int
		prev string
		via  *models.NavEdge
	}
	dist := map[string]*state{fromNodeID: {cost: 0}}
	visited := map[string]bool{}

	for {
		// Pick the unvisited node with the smallest known distance,
		// breaking ties by node ID for determinism.
		current := ""
		best := -1
		ids := make([]string, 0, len(dist))
		for id := range dist {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if visited[id] {
				continue
			}
			if best == -1 || dist[id].cost < best {
				best = dist[id].cost
				current = id
			}
		}
		if current == "" {
			break
		}
		if current == toNodeID {
			break
		}
		visited[current] = true

		edges := append([]*models.NavEdge(nil), graph.Adjacency[current]...)
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].To != edges[j].To {
				return edges[i].To < edges[j].To
			}
			return edges[i].ID < edges[j].ID
		})

		for _, e := range edges {
			weight := e.Weight
			if weight <= 0 {
				weight = 1
			}
			newCost := dist[current].cost + weight
			if s, ok := dist[e.To]; !ok || newCost < s.cost {
				dist[e.To] = &state{cost: newCost, prev: current, via: e}
			}
		}
	}

	if _, ok := dist[toNodeID]; !ok {
		return nil, apierr.New(apierr.KindInfeasible, "no path to the requested node")
	}

	var edges []*models.NavEdge
	for at := toNodeID; at != fromNodeID; {
		s := dist[at]
		edges = append([]*models.NavEdge{s.via}, edges...)
		at = s.prev
	}

	return &Path{Edges: edges}, nil
}
