package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/virtualpytest/core/pkg/navcache"
)

// ListNodes handles GET /navigation/nodes?team_id=&interface_id= (spec §4.2
// read surface over the unified graph).
func (d *Deps) ListNodes(c *gin.Context) {
	teamID, ok := requireQuery(c, "team_id")
	if !ok {
		return
	}
	interfaceID, ok := requireQuery(c, "interface_id")
	if !ok {
		return
	}

	graph, err := d.NavCache.Get(c.Request.Context(), teamID, interfaceID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	nodes := make([]gin.H, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		nodes = append(nodes, gin.H{"id": n.ID, "label": n.Label, "tree_id": n.TreeID})
	}
	respondJSON(c, http.StatusOK, gin.H{"nodes": nodes})
}

type navigateRequest struct {
	SessionID   string `json:"session_id" binding:"required"`
	OwnerID     string `json:"owner_id" binding:"required"`
	DeviceID    string `json:"device_id" binding:"required"`
	TeamID      string `json:"team_id" binding:"required"`
	InterfaceID string `json:"interface_id" binding:"required"`
	FromNodeID  string `json:"from_node_id" binding:"required"`
	ToNodeID    string `json:"to_node_id" binding:"required"`
}

// NavigateExecute handles POST /navigation/execute: resolves a path over
// the cached unified graph, assembles its pre-expanded actions into a
// plan, and submits it for async execution (spec §4.2 navigate_to_node).
func (d *Deps) NavigateExecute(c *gin.Context) {
	var req navigateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := d.ensureOwner(req.SessionID, req.OwnerID); err != nil {
		respondAPIError(c, err)
		return
	}

	graph, err := d.NavCache.Get(c.Request.Context(), req.TeamID, req.InterfaceID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	path, err := navcache.FindPath(graph, req.FromNodeID, req.ToNodeID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	transitions := make(map[string]interface{}, len(path.Edges))
	for _, e := range path.Edges {
		transitions[e.ID] = e.Actions
	}

	plan := newNavigationPlan(req.TeamID, req.ToNodeID, transitions)
	record := d.Jobs.Submit(c.Request.Context(), req.TeamID, req.DeviceID, plan.ID, &planRunner{
		executor: d.BlockExec,
		plan:     plan,
		deviceID: req.DeviceID,
	})
	respondJSON(c, http.StatusAccepted, gin.H{"execution_id": record.ID, "status": record.Status, "total_actions": path.TotalActions()})
}
