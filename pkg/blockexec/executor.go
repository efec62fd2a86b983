// Package blockexec implements the Block & Graph Executor (spec §4.4).
//
// Unlike the teacher's DAGExecutor, which runs independent nodes of a wave
// concurrently, this executor walks a Plan strictly one block at a time:
// spec §5 mandates intra-execution block ordering, so a block never starts
// before the block whose edge it followed has finished.
package blockexec

import (
	"context"
	"fmt"
	"time"

	"github.com/virtualpytest/core/internal/logger"
	"github.com/virtualpytest/core/pkg/models"
)

// Notifier receives structured begin/end events as the executor walks the
// plan (spec's supplemented "structured execution event log", grounded on
// the teacher's ObserverManager fan-out). Implementations must not block.
type Notifier interface {
	BlockStarted(executionID string, block *models.Block)
	BlockFinished(executionID string, block *models.Block, output map[string]interface{}, err error)
}

// NoopNotifier discards every event.
type NoopNotifier struct{}

func (NoopNotifier) BlockStarted(string, *models.Block)                                    {}
func (NoopNotifier) BlockFinished(string, *models.Block, map[string]interface{}, error) {}

// Executor walks a Plan graph sequentially, dispatching each block to the
// Registry and following the success/failure edge its result selects.
type Executor struct {
	registry   *Registry
	evaluator  *ConditionEvaluator
	notifier   Notifier
	log        *logger.Logger
	maxLoopHop int // safety bound independent of any single loop block's "iterations" config
}

// New constructs an Executor.
func New(registry *Registry, evaluator *ConditionEvaluator, notifier Notifier, log *logger.Logger) *Executor {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Executor{registry: registry, evaluator: evaluator, notifier: notifier, log: log, maxLoopHop: 10000}
}

// Result is the terminal outcome of a full plan walk.
type Result struct {
	Status models.ExecutionStatus
	Output map[string]interface{}
	Logs   []models.LogEntry
	Err    error
}

// Run walks plan from its start block to a success/failure terminal
// block, honoring per-block retries and the strict sequential
// ordering guarantee. ctx cancellation is cooperative: it is checked
// between blocks and passed through to each Executor so in-flight device
// calls can also observe it.
func (x *Executor) Run(ctx context.Context, plan *models.Plan, state *State, deviceID string) *Result {
	logs := make([]models.LogEntry, 0, 64)
	appendLog := func(level, blockID, msg string) {
		logs = append(logs, models.LogEntry{Timestamp: time.Now(), Level: level, BlockID: blockID, Message: msg})
	}

	current, err := plan.StartBlock()
	if err != nil {
		return &Result{Status: models.ExecutionFailed, Err: err, Logs: logs}
	}

	var lastOutput map[string]interface{}
	loopCounts := make(map[string]int)
	hops := 0

	for {
		if err := ctx.Err(); err != nil {
			appendLog("warn", current.ID, "execution cancelled")
			return &Result{Status: models.ExecutionCancelled, Output: lastOutput, Err: err, Logs: logs}
		}

		hops++
		if hops > x.maxLoopHop {
			err := fmt.Errorf("exceeded maximum block hops (%d), likely an unbounded loop", x.maxLoopHop)
			return &Result{Status: models.ExecutionFailed, Output: lastOutput, Err: err, Logs: logs}
		}

		switch current.Type {
		case models.BlockSuccess:
			appendLog("info", current.ID, "plan reached success terminal")
			return &Result{Status: models.ExecutionCompleted, Output: lastOutput, Logs: logs}
		case models.BlockFailure:
			appendLog("info", current.ID, "plan reached failure terminal")
			return &Result{Status: models.ExecutionFailed, Output: lastOutput, Logs: logs}
		}

		x.notifier.BlockStarted(state.ExecutionID, current)
		state.MarkStart(current.ID)
		appendLog("info", current.ID, fmt.Sprintf("executing block (type=%s)", current.Type))

		output, runErr := x.runBlock(ctx, plan, current, state, deviceID, loopCounts, lastOutput)

		state.MarkEnd(current.ID)
		state.SetBlockOutput(current.ID, output)
		state.SetBlockError(current.ID, runErr)
		x.notifier.BlockFinished(state.ExecutionID, current, output, runErr)

		if runErr != nil {
			appendLog("error", current.ID, runErr.Error())
			if current.OnFailure == models.FailureActionStop {
				return &Result{Status: models.ExecutionFailed, Output: output, Err: runErr, Logs: logs}
			}
		}

		handle := resultHandle(current, output, runErr)

		edge := plan.OutgoingEdge(current.ID, handle)
		if edge == nil {
			// No edge on this handle: success with no success edge ends
			// the plan successfully; failure with no failure edge ends
			// it as a failure.
			if handle == models.HandleSuccess {
				return &Result{Status: models.ExecutionCompleted, Output: output, Logs: logs}
			}
			return &Result{Status: models.ExecutionFailed, Output: output, Err: runErr, Logs: logs}
		}

		if edge.Condition != "" {
			ok, condErr := x.evaluator.Evaluate(edge.Condition, output, state.VariablesSnapshot())
			if condErr != nil {
				return &Result{Status: models.ExecutionFailed, Output: output, Err: condErr, Logs: logs}
			}
			if !ok {
				// The edge condition vetoed this transition; without an
				// alternate route the plan ends in the block's own
				// outcome state.
				if handle == models.HandleSuccess {
					return &Result{Status: models.ExecutionCompleted, Output: output, Logs: logs}
				}
				return &Result{Status: models.ExecutionFailed, Output: output, Err: runErr, Logs: logs}
			}
		}

		next, err := plan.GetBlock(edge.To)
		if err != nil {
			return &Result{Status: models.ExecutionFailed, Output: output, Err: err, Logs: logs}
		}
		current = next
		lastOutput = output
	}
}

func (x *Executor) runBlock(ctx context.Context, plan *models.Plan, block *models.Block, state *State, deviceID string, loopCounts map[string]int, parentOutput map[string]interface{}) (map[string]interface{}, error) {
	switch block.Type {
	case models.BlockLoop:
		return x.runLoop(block, loopCounts)
	case models.BlockSetVariable:
		return x.runSetVariable(block, state)
	case models.BlockSleep:
		return x.runSleep(ctx, block, state)
	case models.BlockEvaluateCondition:
		return x.runEvaluateCondition(block, state, parentOutput)
	}

	executor, err := x.registry.Get(string(block.Type))
	if err != nil {
		return nil, err
	}

	policy := DefaultRetryPolicy()
	if block.RetryPolicy != nil {
		policy = RetryPolicy{
			MaxAttempts:     block.RetryPolicy.MaxAttempts,
			InitialDelay:    block.RetryPolicy.Delay,
			MaxDelay:        block.RetryPolicy.Delay * 10,
			BackoffStrategy: BackoffExponential,
		}
	}

	resolvedConfig := ResolveTemplates(block.Config, state.VariablesSnapshot())
	bctx := &BlockContext{
		ExecutionID:  state.ExecutionID,
		DeviceID:     deviceID,
		Block:        block,
		Config:       resolvedConfig,
		ParentOutput: parentOutput,
		Variables:    state.VariablesSnapshot(),
	}

	return policy.Execute(ctx, func() (map[string]interface{}, error) {
		return executor.Execute(ctx, bctx)
	}, func(attempt int, err error) {
		if x.log != nil {
			x.log.Warn("retrying block", "block_id", block.ID, "attempt", attempt, "error", err)
		}
	})
}

// runLoop is revisited once per iteration attempt: the first `iterations`
// visits report "not yet done" (routing back into the body via the
// failure handle), the visit after that reports "done" (routing out via
// the success handle). iterations = 0 is therefore done on the very first
// visit without ever entering the body (spec §8 boundary behavior).
func (x *Executor) runLoop(block *models.Block, loopCounts map[string]int) (map[string]interface{}, error) {
	iterations := 0
	if v, ok := block.Config["iterations"]; ok {
		switch n := v.(type) {
		case int:
			iterations = n
		case float64:
			iterations = int(n)
		}
	}

	loopCounts[block.ID]++
	done := loopCounts[block.ID] > iterations
	return map[string]interface{}{"iteration": loopCounts[block.ID], "result": done}, nil
}

// runSetVariable writes a literal or template-resolved value into the
// execution's variable scope, visible to every block downstream.
func (x *Executor) runSetVariable(block *models.Block, state *State) (map[string]interface{}, error) {
	name, _ := block.Config["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("set_variable block %s missing required config field %q", block.ID, "name")
	}
	resolved := ResolveTemplates(block.Config, state.VariablesSnapshot())
	value := resolved["value"]
	state.SetVariable(name, value)
	return map[string]interface{}{"name": name, "value": value}, nil
}

// runSleep pauses the walker for the configured duration, observing ctx
// cancellation so a cancelled execution doesn't block on a long sleep.
func (x *Executor) runSleep(ctx context.Context, block *models.Block, state *State) (map[string]interface{}, error) {
	ms := 0
	if v, ok := block.Config["duration_ms"]; ok {
		switch n := v.(type) {
		case int:
			ms = n
		case float64:
			ms = int(n)
		}
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(time.Duration(ms) * time.Millisecond):
	}
	return map[string]interface{}{"slept_ms": ms}, nil
}

// runEvaluateCondition compiles and runs the block's "condition" field
// against the previous block's output and the current variable scope,
// returning a "result" bool that resultHandle() routes on.
func (x *Executor) runEvaluateCondition(block *models.Block, state *State, parentOutput map[string]interface{}) (map[string]interface{}, error) {
	condition, _ := block.Config["condition"].(string)
	if condition == "" {
		return nil, fmt.Errorf("evaluate_condition block %s missing required config field %q", block.ID, "condition")
	}
	result, err := x.evaluator.Evaluate(condition, parentOutput, state.VariablesSnapshot())
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"result": result}, nil
}

// resultHandle picks which outgoing edge a finished block routes through.
// evaluate_condition and loop blocks route on their own "result" bool;
// for evaluate_condition, true follows the success handle. For loop,
// "result" means "iterations exhausted" — true exits via the success
// handle, false re-enters the body via the failure handle. Every other
// block type routes on whether it returned an error.
func resultHandle(block *models.Block, output map[string]interface{}, runErr error) models.EdgeHandle {
	if runErr != nil {
		return models.HandleFailure
	}
	if block.Type == models.BlockEvaluateCondition || block.Type == models.BlockLoop {
		if result, ok := output["result"].(bool); ok && !result {
			return models.HandleFailure
		}
	}
	return models.HandleSuccess
}
