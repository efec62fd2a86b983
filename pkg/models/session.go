package models

import "time"

// Team is the tenancy boundary for every resource in this module
// (navigation trees, plans, devices); spec's Non-goals exclude deeper
// multi-tenant isolation than this.
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Host is a machine that physically drives one or more Devices and exposes
// an HTTP API the Proxy forwards block-execution calls to.
type Host struct {
	Name    string `json:"name"`
	BaseURL string `json:"base_url"`
}

// Device is a single controllable unit (a TV, set-top box, phone) attached
// to a Host.
type Device struct {
	ID       string `json:"id"`
	TeamID   string `json:"team_id"`
	HostName string `json:"host_name"`
	Name     string `json:"name"`
	Kind     string `json:"kind"` // e.g. "android_tv", "stb", "web"
}

// SessionStatus tracks a control session's lifecycle.
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionExpired SessionStatus = "expired"
	SessionClosed  SessionStatus = "closed"
)

// Session represents exclusive ownership of a Device by a caller, acquired
// via take_control and released via release_control (spec §4.1).
type Session struct {
	ID        string        `json:"id"`
	DeviceID  string        `json:"device_id"`
	TeamID    string        `json:"team_id"`
	OwnerID   string        `json:"owner_id"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// IsActive reports whether the session still holds the lock.
func (s *Session) IsActive(now time.Time) bool {
	return s.Status == SessionActive && now.Before(s.ExpiresAt)
}
