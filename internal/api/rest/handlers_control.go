package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type takeControlRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	OwnerID     string `json:"owner_id" binding:"required"`
	TTLSeconds  int    `json:"ttl_seconds"`
	InterfaceID string `json:"interface_id"`
}

type takeControlResponse struct {
	SessionID   string `json:"session_id"`
	DeviceID    string `json:"device_id"`
	ExpiresAt   string `json:"expires_at"`
	CacheReady  bool   `json:"cache_ready"`
}

// TakeControl handles POST /control/take (spec §4.1 take_control).
func (d *Deps) TakeControl(c *gin.Context) {
	var req takeControlRequest
	if !bindJSON(c, &req) {
		return
	}

	ttl := time.Duration(req.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Duration(d.ExecutionTTL) * time.Second
	}

	sess, err := d.Sessions.TakeControl(c.Request.Context(), req.DeviceID, req.OwnerID, ttl)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	cacheReady := false
	if req.InterfaceID != "" {
		if _, err := d.NavCache.Get(c.Request.Context(), sess.TeamID, req.InterfaceID); err == nil {
			cacheReady = true
		}
	}

	respondJSON(c, http.StatusOK, takeControlResponse{
		SessionID:  sess.ID,
		DeviceID:   sess.DeviceID,
		ExpiresAt:  sess.ExpiresAt.Format(time.RFC3339),
		CacheReady: cacheReady,
	})
}

type releaseControlRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	OwnerID   string `json:"owner_id" binding:"required"`
}

// ReleaseControl handles POST /control/release (spec §4.1 release_control).
func (d *Deps) ReleaseControl(c *gin.Context) {
	var req releaseControlRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := d.Sessions.ReleaseControl(c.Request.Context(), req.SessionID, req.OwnerID); err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"released": true})
}

type lockedResponse struct {
	Locked  bool   `json:"locked"`
	OwnerID string `json:"owner_id,omitempty"`
}

// Locked handles GET /control/locked/:device_id (spec §4.1 list_active_sessions
// reduced to a single-device lock check).
func (d *Deps) Locked(c *gin.Context) {
	deviceID, ok := requireParam(c, "device_id")
	if !ok {
		return
	}
	locked, ownerID, err := d.Sessions.Locked(c.Request.Context(), deviceID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, lockedResponse{Locked: locked, OwnerID: ownerID})
}
