package blockexec

import (
	"sync"
	"time"

	"github.com/virtualpytest/core/pkg/models"
)

// BlockContext is the input an Executor sees for a single block run: its
// resolved config, the previous block's output, and the execution's
// variable scope for {name} substitution (spec §4.4 variable scoping).
type BlockContext struct {
	ExecutionID  string
	DeviceID     string
	Block        *models.Block
	Config       map[string]interface{}
	ParentOutput map[string]interface{}
	Variables    map[string]interface{}
}

// State tracks per-execution bookkeeping as the sequential walker advances
// block by block: variable scope, per-block outputs/errors/status, and
// timestamps — the same shape as the teacher's ExecutionState, minus the
// wave/loop-range tracking the teacher needed for parallel scheduling.
type State struct {
	mu sync.RWMutex

	ExecutionID string
	PlanID      string
	Variables   map[string]interface{}

	blockOutputs map[string]map[string]interface{}
	blockErrors  map[string]error
	blockStart   map[string]time.Time
	blockEnd     map[string]time.Time
}

// NewState constructs execution state seeded with the plan's variables
// overlaid by the caller-supplied input.
func NewState(executionID, planID string, planVars, input map[string]interface{}) *State {
	vars := make(map[string]interface{}, len(planVars)+len(input))
	for k, v := range planVars {
		vars[k] = v
	}
	for k, v := range input {
		vars[k] = v
	}
	return &State{
		ExecutionID:  executionID,
		PlanID:       planID,
		Variables:    vars,
		blockOutputs: make(map[string]map[string]interface{}),
		blockErrors:  make(map[string]error),
		blockStart:   make(map[string]time.Time),
		blockEnd:     make(map[string]time.Time),
	}
}

func (s *State) SetVariable(name string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Variables[name] = value
}

func (s *State) GetVariable(name string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.Variables[name]
	return v, ok
}

func (s *State) VariablesSnapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]interface{}, len(s.Variables))
	for k, v := range s.Variables {
		snap[k] = v
	}
	return snap
}

func (s *State) SetBlockOutput(blockID string, output map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockOutputs[blockID] = output
}

func (s *State) GetBlockOutput(blockID string) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockOutputs[blockID]
}

func (s *State) SetBlockError(blockID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockErrors[blockID] = err
}

func (s *State) GetBlockError(blockID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockErrors[blockID]
}

func (s *State) MarkStart(blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockStart[blockID] = time.Now()
}

func (s *State) MarkEnd(blockID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockEnd[blockID] = time.Now()
}

func (s *State) Duration(blockID string) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start, ok := s.blockStart[blockID]
	if !ok {
		return 0
	}
	end, ok := s.blockEnd[blockID]
	if !ok {
		end = time.Now()
	}
	return end.Sub(start)
}
