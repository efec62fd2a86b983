// Package jobs implements the Proxy & Async Job Registry (spec §4.5):
// async submission of a plan/block/action run, status polling of its
// Execution Record, and a stateless proxy that routes a device's calls
// to the host that actually drives it.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/models"
)

// Runner executes a submitted job and reports its terminal outcome. The
// Block & Graph Executor implements this for plan/block submissions.
type Runner interface {
	Run(ctx context.Context, record *models.ExecutionRecord) (status models.ExecutionStatus, output map[string]interface{}, logs []models.LogEntry, err error)
}

// Registry tracks in-flight and recently-finished Execution Records.
// Submission returns within O(100ms): it hands the record off to a
// goroutine and returns the execution_id immediately (spec §4.5).
type Registry struct {
	mu      sync.RWMutex
	records map[string]*models.ExecutionRecord
	cancels map[string]context.CancelFunc
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]*models.ExecutionRecord),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Submit creates a pending Execution Record and starts running it in the
// background via runner, returning the record immediately.
func (r *Registry) Submit(ctx context.Context, teamID, deviceID, planID string, runner Runner) *models.ExecutionRecord {
	record := &models.ExecutionRecord{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		DeviceID:  deviceID,
		PlanID:    planID,
		Status:    models.ExecutionPending,
		CreatedAt: time.Now(),
	}

	runCtx, cancel := context.WithCancel(context.Background())

	r.mu.Lock()
	r.records[record.ID] = record
	r.cancels[record.ID] = cancel
	r.mu.Unlock()

	go r.run(runCtx, record, runner)

	return record
}

func (r *Registry) run(ctx context.Context, record *models.ExecutionRecord, runner Runner) {
	r.mu.Lock()
	record.Status = models.ExecutionRunning
	now := time.Now()
	record.StartedAt = &now
	r.mu.Unlock()

	status, output, logs, err := runner.Run(ctx, record)

	r.mu.Lock()
	defer r.mu.Unlock()
	record.Status = status
	record.Output = output
	record.Logs = append(record.Logs, logs...)
	if err != nil {
		if apiErr, ok := apierr.As(err); ok {
			record.ErrorKind = string(apiErr.Kind)
			record.ErrorMsg = apiErr.Message
		} else {
			record.ErrorKind = string(apierr.KindInternal)
			record.ErrorMsg = err.Error()
		}
	}
	finished := time.Now()
	record.FinishedAt = &finished
	delete(r.cancels, record.ID)
}

// Get returns an Execution Record by ID.
func (r *Registry) Get(executionID string) (*models.ExecutionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[executionID]
	if !ok {
		return nil, apierr.New(apierr.KindNotFound, "execution not found")
	}
	return rec, nil
}

// Cancel requests cancellation of a running execution. If the execution
// already reached a terminal status, nothing changes and a CANCELLED-kind
// error ("execution already finished") is returned.
func (r *Registry) Cancel(executionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[executionID]
	if !ok {
		return apierr.New(apierr.KindNotFound, "execution not found")
	}
	if rec.Status.IsTerminal() {
		return apierr.New(apierr.KindCancelled, "execution already finished")
	}
	if cancel, ok := r.cancels[executionID]; ok {
		cancel()
	}
	return nil
}

// EvictOlderThan removes terminal records whose FinishedAt predates
// cutoff, implementing T_retain (spec §3, §9 Open Questions).
func (r *Registry) EvictOlderThan(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, rec := range r.records {
		if rec.Status.IsTerminal() && rec.FinishedAt != nil && rec.FinishedAt.Before(cutoff) {
			delete(r.records, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of tracked records, for tests and metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
