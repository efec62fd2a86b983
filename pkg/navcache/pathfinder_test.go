package navcache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/models"
)

func testGraph() *models.UnifiedGraph {
	nodes := map[string]*models.NavNode{
		"home":     {ID: "home", Label: "Home"},
		"settings": {ID: "settings", Label: "Settings"},
		"wifi":     {ID: "wifi", Label: "Wi-Fi"},
	}
	adjacency := map[string][]*models.NavEdge{
		"home": {
			{ID: "e1", From: "home", To: "settings", Weight: 1, Actions: []models.ActionTemplate{{Type: "press", Params: map[string]interface{}{"key": "MENU"}}}},
		},
		"settings": {
			{ID: "e2", From: "settings", To: "wifi", Weight: 1, Actions: []models.ActionTemplate{{Type: "press", Params: map[string]interface{}{"key": "OK"}}}},
		},
	}
	return &models.UnifiedGraph{Nodes: nodes, Adjacency: adjacency}
}

func TestFindPath_Direct(t *testing.T) {
	g := testGraph()
	p, err := FindPath(g, "home", "settings")
	require.NoError(t, err)
	require.Len(t, p.Edges, 1)
	require.Equal(t, "e1", p.Edges[0].ID)
}

func TestFindPath_MultiHop(t *testing.T) {
	g := testGraph()
	p, err := FindPath(g, "home", "wifi")
	require.NoError(t, err)
	require.Len(t, p.Edges, 2)
	require.Equal(t, "e1", p.Edges[0].ID)
	require.Equal(t, "e2", p.Edges[1].ID)
	require.Equal(t, 2, p.TotalActions())
}

func TestFindPath_SameNode(t *testing.T) {
	g := testGraph()
	p, err := FindPath(g, "home", "home")
	require.NoError(t, err)
	require.Empty(t, p.Edges)
}

func TestFindPath_Infeasible(t *testing.T) {
	g := testGraph()
	_, err := FindPath(g, "wifi", "home")
	require.Error(t, err)
	apiErr, ok := apierr.As(err)
	require.True(t, ok)
	require.Equal(t, apierr.KindInfeasible, apiErr.Kind)
}

func TestFindPath_UnknownNode(t *testing.T) {
	g := testGraph()
	_, err := FindPath(g, "home", "nope")
	require.Error(t, err)
	apiErr, ok := apierr.As(err)
	require.True(t, ok)
	require.Equal(t, apierr.KindNotFound, apiErr.Kind)
}
