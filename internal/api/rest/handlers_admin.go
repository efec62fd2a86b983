package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/virtualpytest/core/pkg/models"
)

// RegisterHost handles POST /admin/hosts: registers a host the Proxy can
// later route device calls to. Device/host provisioning is not itself part
// of the spec's external interfaces table; this is the minimal surface a
// deployment needs to populate the in-memory registry the session layer
// and proxy both depend on.
func (d *Deps) RegisterHost(c *gin.Context) {
	var host models.Host
	if !bindJSON(c, &host) {
		return
	}
	if host.Name == "" || host.BaseURL == "" {
		respondAPIError(c, ErrMissingParameter)
		return
	}
	d.Registry.RegisterHost(&host)
	respondJSON(c, http.StatusOK, gin.H{"registered": true})
}

// RegisterDevice handles POST /admin/devices.
func (d *Deps) RegisterDevice(c *gin.Context) {
	var device models.Device
	if !bindJSON(c, &device) {
		return
	}
	if device.ID == "" || device.HostName == "" {
		respondAPIError(c, ErrMissingParameter)
		return
	}
	d.Registry.RegisterDevice(&device)
	respondJSON(c, http.StatusOK, gin.H{"registered": true})
}

type setCapabilitiesRequest struct {
	Kind          string   `json:"kind" binding:"required"`
	Actions       []string `json:"actions"`
	Verifications []string `json:"verifications"`
}

// SetCapabilities handles POST /admin/capabilities: declares the
// actions/verifications available for a device kind (spec §4.1
// list_actions/list_verifications).
func (d *Deps) SetCapabilities(c *gin.Context) {
	var req setCapabilitiesRequest
	if !bindJSON(c, &req) {
		return
	}
	d.Registry.SetCapabilities(req.Kind, req.Actions, req.Verifications)
	respondJSON(c, http.StatusOK, gin.H{"registered": true})
}
