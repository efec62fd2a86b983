package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExecutionStatus handles GET /execution/status/:execution_id, the poll
// surface every async submission feeds into (spec §4.5).
func (d *Deps) ExecutionStatus(c *gin.Context) {
	executionID, ok := requireParam(c, "execution_id")
	if !ok {
		return
	}
	record, err := d.Jobs.Get(executionID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, record)
}

// ExecutionCancel handles POST /execution/cancel/:execution_id.
func (d *Deps) ExecutionCancel(c *gin.Context) {
	executionID, ok := requireParam(c, "execution_id")
	if !ok {
		return
	}
	if err := d.Jobs.Cancel(executionID); err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"cancelled": true})
}
