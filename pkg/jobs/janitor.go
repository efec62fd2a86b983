package jobs

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/virtualpytest/core/internal/logger"
)

// Janitor periodically evicts terminal Execution Records past T_retain,
// grounded on the teacher's cron-driven scheduler pattern.
type Janitor struct {
	registry *Registry
	retain   time.Duration
	log      *logger.Logger
	cron     *cron.Cron
}

// NewJanitor constructs a Janitor that has not yet been started.
func NewJanitor(registry *Registry, retain time.Duration, log *logger.Logger) *Janitor {
	return &Janitor{registry: registry, retain: retain, log: log, cron: cron.New()}
}

// Start schedules the eviction sweep on the cron spec and returns without
// blocking; cron runs the sweeps on its own goroutine until Stop is called.
func (j *Janitor) Start(spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		evicted := j.registry.EvictOlderThan(time.Now().Add(-j.retain))
		if evicted > 0 {
			j.log.Info("evicted stale execution records", "count", evicted)
		}
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the janitor's scheduled sweeps.
func (j *Janitor) Stop() {
	j.cron.Stop()
}
