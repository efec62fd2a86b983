package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListActions handles GET /capabilities/actions/:device_id. No session
// lock is required: capability listing is read-only (spec §4.1).
func (d *Deps) ListActions(c *gin.Context) {
	deviceID, ok := requireParam(c, "device_id")
	if !ok {
		return
	}
	actions, err := d.Capabilities.ListActions(c.Request.Context(), deviceID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"actions": actions})
}

// ListVerifications handles GET /capabilities/verifications/:device_id.
func (d *Deps) ListVerifications(c *gin.Context) {
	deviceID, ok := requireParam(c, "device_id")
	if !ok {
		return
	}
	verifications, err := d.Capabilities.ListVerifications(c.Request.Context(), deviceID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"verifications": verifications})
}
