package blockexec

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/internal/logger"
	"github.com/virtualpytest/core/pkg/models"
)

func newTestExecutor(registry *Registry) *Executor {
	return New(registry, NewConditionEvaluator(10), NoopNotifier{}, logger.Default())
}

func TestExecutor_Run_HappyPath(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("action", ExecutorFunc(func(ctx context.Context, bctx *BlockContext) (map[string]interface{}, error) {
		return map[string]interface{}{"ran": bctx.Block.ID}, nil
	})))

	plan := &models.Plan{
		Blocks: []*models.Block{
			{ID: "start", Type: models.BlockStart},
			{ID: "a1", Type: models.BlockAction, Config: map[string]interface{}{}},
			{ID: "ok", Type: models.BlockSuccess},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "start", To: "a1", Handle: models.HandleSuccess},
			{ID: "e2", From: "a1", To: "ok", Handle: models.HandleSuccess},
		},
	}

	state := NewState("exec-1", "plan-1", nil, nil)
	result := newTestExecutor(registry).Run(context.Background(), plan, state, "dev-1")

	require.Equal(t, models.ExecutionCompleted, result.Status)
	require.Equal(t, "a1", result.Output["ran"])
}

func TestExecutor_Run_FailurePath(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("action", ExecutorFunc(func(ctx context.Context, bctx *BlockContext) (map[string]interface{}, error) {
		return nil, errors.New("device not responding")
	})))

	plan := &models.Plan{
		Blocks: []*models.Block{
			{ID: "start", Type: models.BlockStart},
			{ID: "a1", Type: models.BlockAction, OnFailure: models.FailureActionContinue},
			{ID: "ok", Type: models.BlockSuccess},
			{ID: "bad", Type: models.BlockFailure},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "start", To: "a1", Handle: models.HandleSuccess},
			{ID: "e2", From: "a1", To: "ok", Handle: models.HandleSuccess},
			{ID: "e3", From: "a1", To: "bad", Handle: models.HandleFailure},
		},
	}

	state := NewState("exec-1", "plan-1", nil, nil)
	result := newTestExecutor(registry).Run(context.Background(), plan, state, "dev-1")

	require.Equal(t, models.ExecutionFailed, result.Status)
}

func TestExecutor_Run_EvaluateConditionRoutes(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("action", ExecutorFunc(func(ctx context.Context, bctx *BlockContext) (map[string]interface{}, error) {
		return map[string]interface{}{"score": 10}, nil
	})))

	plan := &models.Plan{
		Blocks: []*models.Block{
			{ID: "start", Type: models.BlockStart},
			{ID: "a1", Type: models.BlockAction},
			{ID: "cond", Type: models.BlockEvaluateCondition, Config: map[string]interface{}{"condition": "output.score > 5"}},
			{ID: "ok", Type: models.BlockSuccess},
			{ID: "bad", Type: models.BlockFailure},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "start", To: "a1", Handle: models.HandleSuccess},
			{ID: "e2", From: "a1", To: "cond", Handle: models.HandleSuccess},
			{ID: "e3", From: "cond", To: "ok", Handle: models.HandleSuccess},
			{ID: "e4", From: "cond", To: "bad", Handle: models.HandleFailure},
		},
	}

	state := NewState("exec-1", "plan-1", nil, nil)
	result := newTestExecutor(registry).Run(context.Background(), plan, state, "dev-1")

	require.Equal(t, models.ExecutionCompleted, result.Status)
}

func TestExecutor_Run_SetVariableVisibleDownstream(t *testing.T) {
	registry := NewRegistry()
	var seen interface{}
	require.NoError(t, registry.Register("action", ExecutorFunc(func(ctx context.Context, bctx *BlockContext) (map[string]interface{}, error) {
		seen = bctx.Variables["greeting"]
		return map[string]interface{}{}, nil
	})))

	plan := &models.Plan{
		Blocks: []*models.Block{
			{ID: "start", Type: models.BlockStart},
			{ID: "sv", Type: models.BlockSetVariable, Config: map[string]interface{}{"name": "greeting", "value": "hello"}},
			{ID: "a1", Type: models.BlockAction},
			{ID: "ok", Type: models.BlockSuccess},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "start", To: "sv", Handle: models.HandleSuccess},
			{ID: "e2", From: "sv", To: "a1", Handle: models.HandleSuccess},
			{ID: "e3", From: "a1", To: "ok", Handle: models.HandleSuccess},
		},
	}

	state := NewState("exec-1", "plan-1", nil, nil)
	result := newTestExecutor(registry).Run(context.Background(), plan, state, "dev-1")

	require.Equal(t, models.ExecutionCompleted, result.Status)
	require.Equal(t, "hello", seen)
}

func loopPlan(iterations int) *models.Plan {
	return &models.Plan{
		Blocks: []*models.Block{
			{ID: "start", Type: models.BlockStart},
			{ID: "loop", Type: models.BlockLoop, Config: map[string]interface{}{"iterations": iterations}},
			{ID: "body", Type: models.BlockAction},
			{ID: "ok", Type: models.BlockSuccess},
		},
		Edges: []*models.Edge{
			{ID: "e1", From: "start", To: "loop", Handle: models.HandleSuccess},
			{ID: "e2", From: "loop", To: "body", Handle: models.HandleFailure},
			{ID: "e3", From: "body", To: "loop", Handle: models.HandleSuccess},
			{ID: "e4", From: "loop", To: "ok", Handle: models.HandleSuccess},
		},
	}
}

func TestExecutor_Run_LoopZeroIterationsSkipsBodyAndSucceeds(t *testing.T) {
	registry := NewRegistry()
	ran := 0
	require.NoError(t, registry.Register("action", ExecutorFunc(func(ctx context.Context, bctx *BlockContext) (map[string]interface{}, error) {
		ran++
		return map[string]interface{}{}, nil
	})))

	state := NewState("exec-1", "plan-1", nil, nil)
	result := newTestExecutor(registry).Run(context.Background(), loopPlan(0), state, "dev-1")

	require.Equal(t, models.ExecutionCompleted, result.Status)
	require.Equal(t, 0, ran)
}

func TestExecutor_Run_LoopRunsBodyExactlyIterationsTimes(t *testing.T) {
	registry := NewRegistry()
	ran := 0
	require.NoError(t, registry.Register("action", ExecutorFunc(func(ctx context.Context, bctx *BlockContext) (map[string]interface{}, error) {
		ran++
		return map[string]interface{}{}, nil
	})))

	state := NewState("exec-1", "plan-1", nil, nil)
	result := newTestExecutor(registry).Run(context.Background(), loopPlan(3), state, "dev-1")

	require.Equal(t, models.ExecutionCompleted, result.Status)
	require.Equal(t, 3, ran)
}
