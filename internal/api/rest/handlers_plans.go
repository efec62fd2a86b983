package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/models"
	"github.com/virtualpytest/core/pkg/planner"
)

type generatePlanRequest struct {
	TeamID      string            `json:"team_id" binding:"required"`
	InterfaceID string            `json:"interface_id" binding:"required"`
	DeviceID    string            `json:"device_id" binding:"required"`
	Prompt      string            `json:"prompt" binding:"required"`
	Resolutions map[string]string `json:"resolutions,omitempty"`
}

type generatePlanResponse struct {
	Plan                *models.Plan        `json:"plan,omitempty"`
	NeedsDisambiguation bool                `json:"needs_disambiguation"`
	Ambiguities         []planner.Ambiguity `json:"ambiguities,omitempty"`
	OriginalPrompt      string              `json:"original_prompt,omitempty"`
}

// GeneratePlan handles POST /plans/generate. A NEEDS_DISAMBIGUATION result
// is not an error: it is returned as an HTTP 200 with a sentinel status
// field, per spec §7.
func (d *Deps) GeneratePlan(c *gin.Context) {
	var req generatePlanRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	for phrase, target := range req.Resolutions {
		_ = d.Mappings.PutLearnedMapping(ctx, &models.LearnedMapping{
			TeamID:      req.TeamID,
			InterfaceID: req.InterfaceID,
			Phrase:      phrase,
			Target:      target,
			Confidence:  1.0,
			UpdatedAt:   time.Now(),
		})
	}

	fetchContext := func(ctx context.Context) (planner.Context, error) {
		return d.planContext(ctx, req.DeviceID, req.TeamID, req.InterfaceID)
	}

	plan, err := d.Planner.Build(ctx, req.TeamID, req.InterfaceID, req.Prompt, fetchContext)
	if err != nil {
		if apiErr, ok := apierr.As(err); ok && apiErr.Kind == apierr.KindNeedsDisambiguation {
			var ambiguities []planner.Ambiguity
			if details := apiErr.Details; details != nil {
				if found, ok := details["ambiguities"].([]planner.Ambiguity); ok {
					ambiguities = found
				}
			}
			respondJSON(c, http.StatusOK, generatePlanResponse{
				NeedsDisambiguation: true,
				Ambiguities:         ambiguities,
				OriginalPrompt:      req.Prompt,
			})
			return
		}
		respondAPIError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, generatePlanResponse{Plan: plan})
}

type executePlanRequest struct {
	SessionID string       `json:"session_id" binding:"required"`
	OwnerID   string       `json:"owner_id" binding:"required"`
	DeviceID  string       `json:"device_id" binding:"required"`
	Plan      *models.Plan `json:"plan" binding:"required"`
}

// ExecutePlan handles POST /plans/execute: submits a fully assembled plan
// graph (typically the output of plans/generate, or a saved testcase) for
// async execution.
func (d *Deps) ExecutePlan(c *gin.Context) {
	var req executePlanRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := d.ensureOwner(req.SessionID, req.OwnerID); err != nil {
		respondAPIError(c, err)
		return
	}
	if err := req.Plan.Validate(); err != nil {
		respondAPIError(c, apierr.Wrap(apierr.KindInvalidInput, "plan failed validation", err))
		return
	}

	record := d.Jobs.Submit(c.Request.Context(), req.Plan.TeamID, req.DeviceID, req.Plan.ID, &planRunner{
		executor: d.BlockExec,
		plan:     req.Plan,
		deviceID: req.DeviceID,
	})
	respondJSON(c, http.StatusAccepted, gin.H{"execution_id": record.ID, "status": record.Status})
}
