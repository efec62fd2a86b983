package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/virtualpytest/core/pkg/models"
)

type executeActionsRequest struct {
	SessionID string                  `json:"session_id" binding:"required"`
	OwnerID   string                  `json:"owner_id" binding:"required"`
	DeviceID  string                  `json:"device_id" binding:"required"`
	TeamID    string                  `json:"team_id" binding:"required"`
	Actions   []models.ActionTemplate `json:"actions" binding:"required"`
}

// ExecuteActions handles POST /actions/execute: submits an ordered batch
// of actions for async execution under an existing control session (spec
// §4.4 action_batch submission).
func (d *Deps) ExecuteActions(c *gin.Context) {
	var req executeActionsRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := d.ensureOwner(req.SessionID, req.OwnerID); err != nil {
		respondAPIError(c, err)
		return
	}

	plan, err := newActionBatchPlan(req.TeamID, req.Actions)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	record := d.Jobs.Submit(c.Request.Context(), req.TeamID, req.DeviceID, plan.ID, &planRunner{
		executor: d.BlockExec,
		plan:     plan,
		deviceID: req.DeviceID,
	})
	respondJSON(c, http.StatusAccepted, gin.H{"execution_id": record.ID, "status": record.Status})
}

type executeVerificationRequest struct {
	SessionID        string                 `json:"session_id" binding:"required"`
	OwnerID          string                 `json:"owner_id" binding:"required"`
	DeviceID         string                 `json:"device_id" binding:"required"`
	TeamID           string                 `json:"team_id" binding:"required"`
	VerificationType string                 `json:"verification_type" binding:"required"`
	Params           map[string]interface{} `json:"params"`
	Expected         interface{}            `json:"expected"`
}

// ExecuteVerification handles POST /verifications/execute (spec §4.4
// verification submission).
func (d *Deps) ExecuteVerification(c *gin.Context) {
	var req executeVerificationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := d.ensureOwner(req.SessionID, req.OwnerID); err != nil {
		respondAPIError(c, err)
		return
	}

	plan := newVerificationPlan(req.TeamID, req.VerificationType, req.Params, req.Expected)
	record := d.Jobs.Submit(c.Request.Context(), req.TeamID, req.DeviceID, plan.ID, &planRunner{
		executor: d.BlockExec,
		plan:     plan,
		deviceID: req.DeviceID,
	})
	respondJSON(c, http.StatusAccepted, gin.H{"execution_id": record.ID, "status": record.Status})
}
