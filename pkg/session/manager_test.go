package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/internal/cache"
	"github.com/virtualpytest/core/internal/config"
	"github.com/virtualpytest/core/internal/logger"
	"github.com/virtualpytest/core/pkg/models"
)

type fakeRegistry struct {
	devices map[string]*models.Device
	hosts   map[string]*models.Host
}

func (r *fakeRegistry) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	d, ok := r.devices[id]
	if !ok {
		return nil, models.ErrDeviceNotFound
	}
	return d, nil
}

func (r *fakeRegistry) GetHost(ctx context.Context, name string) (*models.Host, error) {
	h, ok := r.hosts[name]
	if !ok {
		return nil, models.ErrHostNotFound
	}
	return h, nil
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rc, err := cache.NewRedisCache(config.RedisConfig{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	registry := &fakeRegistry{
		devices: map[string]*models.Device{
			"dev-1": {ID: "dev-1", TeamID: "team-1", HostName: "host-1"},
		},
		hosts: map[string]*models.Host{
			"host-1": {Name: "host-1", BaseURL: "http://host-1"},
		},
	}

	return NewManager(rc, registry, nil, time.Second, logger.Default())
}

func TestManager_TakeControl_Success(t *testing.T) {
	m := newTestManager(t)
	sess, err := m.TakeControl(context.Background(), "dev-1", "user-a", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "dev-1", sess.DeviceID)
	require.Equal(t, models.SessionActive, sess.Status)
}

func TestManager_TakeControl_DeviceBusy(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	_, err := m.TakeControl(ctx, "dev-1", "user-a", time.Minute)
	require.NoError(t, err)

	_, err = m.TakeControl(ctx, "dev-1", "user-b", time.Minute)
	require.Error(t, err)
	apiErr, ok := apierr.As(err)
	require.True(t, ok)
	require.Equal(t, apierr.KindDeviceBusy, apiErr.Kind)
}

func TestManager_ReleaseControl_NotOwner(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.TakeControl(ctx, "dev-1", "user-a", time.Minute)
	require.NoError(t, err)

	err = m.ReleaseControl(ctx, sess.ID, "user-b")
	require.Error(t, err)
	apiErr, ok := apierr.As(err)
	require.True(t, ok)
	require.Equal(t, apierr.KindNotOwner, apiErr.Kind)
}

func TestManager_ReleaseControl_FreesDeviceForNextCaller(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	sess, err := m.TakeControl(ctx, "dev-1", "user-a", time.Minute)
	require.NoError(t, err)

	require.NoError(t, m.ReleaseControl(ctx, sess.ID, "user-a"))

	_, err = m.TakeControl(ctx, "dev-1", "user-b", time.Minute)
	require.NoError(t, err)
}

func TestManager_Locked(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	locked, owner, err := m.Locked(ctx, "dev-1")
	require.NoError(t, err)
	require.False(t, locked)
	require.Empty(t, owner)

	_, err = m.TakeControl(ctx, "dev-1", "user-a", time.Minute)
	require.NoError(t, err)

	locked, owner, err = m.Locked(ctx, "dev-1")
	require.NoError(t, err)
	require.True(t, locked)
	require.Equal(t, "user-a", owner)
}
