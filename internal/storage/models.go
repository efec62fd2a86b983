package storage

import (
	"time"

	"github.com/uptrace/bun"
)

// Table name constants shared between the generic Persistence adapter and
// the typed repository wrappers.
const (
	TablePlanCache       = "plan_cache"
	TableLearnedMapping  = "learned_mapping"
	TableExecutionRecord = "execution_history"
	TableNavigationTree  = "navigation_tree"
)

// Every table this package owns shares the same physical shape: an opaque
// JSON payload addressed by a string key, plus a timestamp for retention
// sweeps. PlanCacheModel/LearnedMappingModel/ExecutionRecordModel/
// NavigationTreeModel exist only so InitSchema has a literal table name to
// create; runtime reads and writes go through the generic row in generic.go.

type PlanCacheModel struct {
	bun.BaseModel `bun:"table:plan_cache,alias:pc"`

	Key       string    `bun:"key,pk"`
	Payload   []byte    `bun:"payload,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type LearnedMappingModel struct {
	bun.BaseModel `bun:"table:learned_mapping,alias:lm"`

	Key       string    `bun:"key,pk"`
	Payload   []byte    `bun:"payload,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type ExecutionRecordModel struct {
	bun.BaseModel `bun:"table:execution_history,alias:ex"`

	Key       string    `bun:"key,pk"`
	Payload   []byte    `bun:"payload,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type NavigationTreeModel struct {
	bun.BaseModel `bun:"table:navigation_tree,alias:nt"`

	Key       string    `bun:"key,pk"`
	Payload   []byte    `bun:"payload,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at"`
}
