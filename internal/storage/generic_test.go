package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/pkg/models"
)

// These exercise the generic Persistence adapter against a real Postgres
// instance. Set VPT_TEST_DATABASE_URL to run them; otherwise they are
// skipped, since this package intentionally carries no embedded-DB harness.
func requireLiveStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("VPT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("VPT_TEST_DATABASE_URL not set, skipping live storage test")
	}
	store := NewStore(dsn)
	require.NoError(t, store.InitSchema(context.Background()))
	return store
}

func TestStore_PlanCacheRoundTrip(t *testing.T) {
	store := requireLiveStore(t)
	defer store.Close()
	repo := NewPlanCacheRepository(store)
	ctx := context.Background()

	entry := &models.PlanCacheEntry{
		Key:        "fp-1",
		TeamID:     "team-1",
		Plan:       &models.Plan{ID: "plan-1", TeamID: "team-1", Name: "go to wifi"},
		CreatedAt:  time.Now(),
		LastUsedAt: time.Now(),
	}
	require.NoError(t, repo.Put(ctx, entry))

	got, err := repo.Get(ctx, "fp-1")
	require.NoError(t, err)
	require.Equal(t, "plan-1", got.Plan.ID)

	evicted, err := repo.EvictStale(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), evicted)
}

func TestStore_ExecutionHistoryListByDevice(t *testing.T) {
	store := requireLiveStore(t)
	defer store.Close()
	repo := NewExecutionHistoryRepository(store)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &models.ExecutionRecord{
		ID:        "exec-1",
		TeamID:    "team-1",
		DeviceID:  "device-1",
		Status:    models.ExecutionCompleted,
		CreatedAt: time.Now(),
	}))

	records, err := repo.ListByDevice(ctx, "device-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "exec-1", records[0].ID)
}
