package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/virtualpytest/core/pkg/models"
)

type saveTestCaseRequest struct {
	TeamID string       `json:"team_id" binding:"required"`
	Name   string       `json:"name" binding:"required"`
	Plan   *models.Plan `json:"plan" binding:"required"`
}

// SaveTestCase handles POST /testcases/save.
func (d *Deps) SaveTestCase(c *gin.Context) {
	var req saveTestCaseRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Plan.Validate(); err != nil {
		respondAPIError(c, err)
		return
	}
	if err := d.TestCases.Put(c.Request.Context(), req.TeamID, req.Name, req.Plan); err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"saved": true})
}

// LoadTestCase handles GET /testcases/load?team_id=&name=.
func (d *Deps) LoadTestCase(c *gin.Context) {
	teamID, ok := requireQuery(c, "team_id")
	if !ok {
		return
	}
	name, ok := requireQuery(c, "name")
	if !ok {
		return
	}
	plan, err := d.TestCases.Get(c.Request.Context(), teamID, name)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"plan": plan})
}

// ListTestCases handles GET /testcases/list?team_id=.
func (d *Deps) ListTestCases(c *gin.Context) {
	teamID, ok := requireQuery(c, "team_id")
	if !ok {
		return
	}
	names, err := d.TestCases.List(c.Request.Context(), teamID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"names": names})
}
