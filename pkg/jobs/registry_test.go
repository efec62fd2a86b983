package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/pkg/models"
)

type fakeRunner struct {
	status models.ExecutionStatus
	output map[string]interface{}
	err    error
	delay  time.Duration
}

func (f *fakeRunner) Run(ctx context.Context, record *models.ExecutionRecord) (models.ExecutionStatus, map[string]interface{}, []models.LogEntry, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return models.ExecutionCancelled, nil, nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.status, f.output, nil, f.err
}

func waitForTerminal(t *testing.T, r *Registry, id string) *models.ExecutionRecord {
	t.Helper()
	for i := 0; i < 100; i++ {
		rec, err := r.Get(id)
		require.NoError(t, err)
		if rec.Status.IsTerminal() {
			return rec
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("execution never reached a terminal status")
	return nil
}

func TestRegistry_SubmitAndPoll(t *testing.T) {
	r := NewRegistry()
	runner := &fakeRunner{status: models.ExecutionCompleted, output: map[string]interface{}{"ok": true}}

	rec := r.Submit(context.Background(), "team-1", "dev-1", "plan-1", runner)
	require.Equal(t, models.ExecutionPending, rec.Status)

	final := waitForTerminal(t, r, rec.ID)
	require.Equal(t, models.ExecutionCompleted, final.Status)
	require.Equal(t, true, final.Output["ok"])
}

func TestRegistry_Cancel(t *testing.T) {
	r := NewRegistry()
	runner := &fakeRunner{status: models.ExecutionCompleted, delay: time.Hour}

	rec := r.Submit(context.Background(), "team-1", "dev-1", "plan-1", runner)
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, r.Cancel(rec.ID))
	final := waitForTerminal(t, r, rec.ID)
	require.Equal(t, models.ExecutionCancelled, final.Status)
}

func TestRegistry_EvictOlderThan(t *testing.T) {
	r := NewRegistry()
	runner := &fakeRunner{status: models.ExecutionCompleted}
	rec := r.Submit(context.Background(), "team-1", "dev-1", "plan-1", runner)
	waitForTerminal(t, r, rec.ID)

	evicted := r.EvictOlderThan(time.Now().Add(time.Minute))
	require.Equal(t, 1, evicted)
	require.Equal(t, 0, r.Len())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	require.Error(t, err)
}
