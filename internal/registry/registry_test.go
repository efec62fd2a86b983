package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/pkg/models"
)

func TestRegistry_GetDevice_NotFound(t *testing.T) {
	r := New()
	_, err := r.GetDevice(context.Background(), "missing")
	require.Error(t, err)
}

func TestRegistry_ListActions_ByDeviceKind(t *testing.T) {
	r := New()
	r.RegisterDevice(&models.Device{ID: "dev-1", TeamID: "team-1", HostName: "host-1", Kind: "android-tv"})
	r.SetCapabilities("android-tv", []string{"press_key", "tap"}, []string{"text_match"})

	actions, err := r.ListActions(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Equal(t, []string{"press_key", "tap"}, actions)

	verifs, err := r.ListVerifications(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Equal(t, []string{"text_match"}, verifs)
}

func TestRegistry_GetHost(t *testing.T) {
	r := New()
	r.RegisterHost(&models.Host{Name: "host-1", BaseURL: "http://localhost:9000"})

	host, err := r.GetHost(context.Background(), "host-1")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000", host.BaseURL)
}
