package storage

import (
	"context"
	"time"

	"github.com/virtualpytest/core/pkg/models"
)

// ExecutionHistoryRepository persists finished Execution Records for
// audit/history lookups, independent of the in-memory Registry the jobs
// package uses for live polling.
type ExecutionHistoryRepository struct {
	store *Store
}

// NewExecutionHistoryRepository constructs an ExecutionHistoryRepository.
func NewExecutionHistoryRepository(store *Store) *ExecutionHistoryRepository {
	return &ExecutionHistoryRepository{store: store}
}

// Put upserts a finished Execution Record.
func (r *ExecutionHistoryRepository) Put(ctx context.Context, record *models.ExecutionRecord) error {
	return r.store.Upsert(ctx, TableExecutionRecord, record.ID, record)
}

// Get fetches an Execution Record by ID.
func (r *ExecutionHistoryRepository) Get(ctx context.Context, executionID string) (*models.ExecutionRecord, error) {
	record := new(models.ExecutionRecord)
	if err := r.store.GetByKey(ctx, TableExecutionRecord, executionID, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ListByDevice returns execution history for a single device.
func (r *ExecutionHistoryRepository) ListByDevice(ctx context.Context, deviceID string) ([]*models.ExecutionRecord, error) {
	var records []*models.ExecutionRecord
	err := r.store.ListByFilter(ctx, TableExecutionRecord, map[string]interface{}{"device_id": deviceID}, &records)
	return records, err
}

// EvictOlderThan removes history rows past the retention window.
func (r *ExecutionHistoryRepository) EvictOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.store.DeleteOlderThan(ctx, TableExecutionRecord, cutoff)
}
