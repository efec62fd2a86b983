// Package session implements the Device Control & Session Layer (spec
// §4.1): exclusive per-device control sessions backed by a Redis lock with
// compare-and-delete release semantics, plus a watchdog that reaps
// sessions whose caller never released them.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/internal/cache"
	"github.com/virtualpytest/core/internal/logger"
	"github.com/virtualpytest/core/pkg/models"
)

// Registry resolves device/host identifiers to their Host record, the
// minimal surface the session layer needs to check reachability. An
// in-memory implementation is supplied by internal/registry.
type Registry interface {
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)
	GetHost(ctx context.Context, hostName string) (*models.Host, error)
}

// HostPinger checks whether a host is reachable before granting control,
// so take_control fails fast with HOST_UNREACHABLE instead of silently
// handing out a lock for a dead device.
type HostPinger interface {
	Ping(ctx context.Context, host *models.Host) error
}

// Manager implements take_control / release_control, plus the lock lookup
// (Locked) and ownership check (RequireOwner) other handlers rely on.
// Capability listing (list_actions / list_verifications) lives in
// internal/registry, not here.
type Manager struct {
	cache    *cache.RedisCache
	registry Registry
	pinger   HostPinger
	log      *logger.Logger

	dialTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*models.Session // session_id -> session, local mirror for fast status reads
}

// NewManager constructs a session Manager.
func NewManager(c *cache.RedisCache, registry Registry, pinger HostPinger, dialTimeout time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		cache:       c,
		registry:    registry,
		pinger:      pinger,
		dialTimeout: dialTimeout,
		log:         log,
		sessions:    make(map[string]*models.Session),
	}
}

func lockKey(deviceID string) string {
	return "session:lock:" + deviceID
}

// TakeControl attempts to acquire exclusive control of a device on behalf
// of ownerID. It returns DEVICE_BUSY if another session already holds the
// lock, and HOST_UNREACHABLE if the device's host does not answer within
// the configured dial timeout.
func (m *Manager) TakeControl(ctx context.Context, deviceID, ownerID string, ttl time.Duration) (*models.Session, error) {
	device, err := m.registry.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNotFound, "device not found", err)
	}

	host, err := m.registry.GetHost(ctx, device.HostName)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindNotFound, "host not found", err)
	}

	if m.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, m.dialTimeout)
		defer cancel()
		if err := m.pinger.Ping(pingCtx, host); err != nil {
			return nil, apierr.Wrap(apierr.KindHostUnreachable, fmt.Sprintf("host %s did not respond", host.Name), err)
		}
	}

	sessionID := uuid.NewString()
	ok, err := m.cache.AcquireLock(ctx, lockKey(deviceID), sessionID, ttl)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInternal, "lock acquisition failed", err)
	}
	if !ok {
		return nil, apierr.New(apierr.KindDeviceBusy, "device is already under another session's control")
	}

	now := time.Now()
	sess := &models.Session{
		ID:        sessionID,
		DeviceID:  deviceID,
		TeamID:    device.TeamID,
		OwnerID:   ownerID,
		Status:    models.SessionActive,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	m.mu.Lock()
	m.sessions[sessionID] = sess
	m.mu.Unlock()

	m.log.Info("session acquired", "session_id", sessionID, "device_id", deviceID, "owner_id", ownerID)
	return sess, nil
}

// ReleaseControl releases a session's hold on its device. Only the
// session's owner may release it; a caller presenting someone else's
// session ID gets NOT_OWNER, never a silent no-op.
func (m *Manager) ReleaseControl(ctx context.Context, sessionID, ownerID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return apierr.New(apierr.KindNotFound, "session not found")
	}
	if sess.OwnerID != ownerID {
		return apierr.New(apierr.KindNotOwner, "caller does not own this session")
	}

	released, err := m.cache.ReleaseLock(ctx, lockKey(sess.DeviceID), sessionID)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "lock release failed", err)
	}

	m.mu.Lock()
	sess.Status = models.SessionClosed
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !released {
		// The lock had already expired and possibly been re-acquired by
		// someone else; releasing our bookkeeping is still correct.
		m.log.Warn("released an already-expired session", "session_id", sessionID)
	}
	return nil
}

// Locked reports whether deviceID currently has an active session, and if
// so who owns it.
func (m *Manager) Locked(ctx context.Context, deviceID string) (bool, string, error) {
	holder, err := m.cache.LockHolder(ctx, lockKey(deviceID))
	if err != nil {
		return false, "", apierr.Wrap(apierr.KindInternal, "lock lookup failed", err)
	}
	if holder == "" {
		return false, "", nil
	}
	m.mu.Lock()
	sess := m.sessions[holder]
	m.mu.Unlock()
	if sess == nil {
		return true, "", nil
	}
	return true, sess.OwnerID, nil
}

// RequireOwner validates that sessionID is active and owned by ownerID,
// returning the session for callers (action/verification/navigation
// execution) that must run under an existing control session.
func (m *Manager) RequireOwner(sessionID, ownerID string) (*models.Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	m.mu.Unlock()
	if !ok {
		return nil, apierr.New(apierr.KindNotFound, "session not found")
	}
	if !sess.IsActive(time.Now()) {
		return nil, apierr.New(apierr.KindNotFound, "session has expired")
	}
	if sess.OwnerID != ownerID {
		return nil, apierr.New(apierr.KindNotOwner, "caller does not own this session")
	}
	return sess, nil
}

// Watchdog periodically reaps local bookkeeping for sessions whose Redis
// lock has already expired, so the in-memory map does not grow unbounded
// when callers never call release_control (spec §4.1 orphan handling).
func (m *Manager) Watchdog(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.reapExpired(ctx)
		}
	}
}

func (m *Manager) reapExpired(ctx context.Context) {
	now := time.Now()
	m.mu.Lock()
	var expired []string
	for id, sess := range m.sessions {
		if !sess.IsActive(now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.log.Info("reaped orphaned session", "session_id", id)
	}
}
