// Package registry is the Device Registry leaf (spec §2 data flow): the
// in-memory table naming every host and the devices it drives, grounded on
// the teacher's MemoryStore.
package registry

import (
	"context"
	"sync"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/models"
)

// Registry resolves device and host identifiers. It implements both
// session.Registry and jobs.HostResolver, the two narrow surfaces callers
// actually need.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*models.Device
	hosts   map[string]*models.Host
	actions map[string][]string // device kind -> available action names
	verifs  map[string][]string // device kind -> available verification names
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		devices: make(map[string]*models.Device),
		hosts:   make(map[string]*models.Host),
		actions: make(map[string][]string),
		verifs:  make(map[string][]string),
	}
}

// RegisterHost adds or replaces a host record.
func (r *Registry) RegisterHost(host *models.Host) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[host.Name] = host
}

// RegisterDevice adds or replaces a device record.
func (r *Registry) RegisterDevice(device *models.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[device.ID] = device
}

// SetCapabilities declares which actions and verifications a device kind
// supports, the catalog list_actions/list_verifications reads from.
func (r *Registry) SetCapabilities(kind string, actions, verifications []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[kind] = actions
	r.verifs[kind] = verifications
}

// GetDevice implements session.Registry and jobs.HostResolver.
func (r *Registry) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[deviceID]
	if !ok {
		return nil, apierr.New(apierr.KindNotFound, "device not registered")
	}
	return d, nil
}

// GetHost implements session.Registry and jobs.HostResolver.
func (r *Registry) GetHost(ctx context.Context, hostName string) (*models.Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hosts[hostName]
	if !ok {
		return nil, apierr.New(apierr.KindNotFound, "host not registered")
	}
	return h, nil
}

// ListActions returns the capability catalog for a device's kind (spec
// §4.1 list_actions — no lock required).
func (r *Registry) ListActions(ctx context.Context, deviceID string) ([]string, error) {
	device, err := r.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actions[device.Kind], nil
}

// ListVerifications returns the capability catalog for a device's kind
// (spec §4.1 list_verifications — no lock required).
func (r *Registry) ListVerifications(ctx context.Context, deviceID string) ([]string, error) {
	device, err := r.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.verifs[device.Kind], nil
}

// DeviceModel returns the device's kind, the value the AI Plan Builder
// folds into its plan-cache fingerprint's context signature (spec §4.3
// step 2 / §6).
func (r *Registry) DeviceModel(ctx context.Context, deviceID string) (string, error) {
	device, err := r.GetDevice(ctx, deviceID)
	if err != nil {
		return "", err
	}
	return device.Kind, nil
}
