package rest

import (
	"context"

	"github.com/google/uuid"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/blockexec"
	"github.com/virtualpytest/core/pkg/models"
)

// planRunner adapts a single Plan walk to the jobs.Runner interface the
// Async Job Registry submits work through.
type planRunner struct {
	executor *blockexec.Executor
	plan     *models.Plan
	deviceID string
	input    map[string]interface{}
}

func (r *planRunner) Run(ctx context.Context, record *models.ExecutionRecord) (models.ExecutionStatus, map[string]interface{}, []models.LogEntry, error) {
	state := blockexec.NewState(record.ID, r.plan.ID, r.plan.Variables, r.input)
	result := r.executor.Run(ctx, r.plan, state, r.deviceID)
	return result.Status, result.Output, result.Logs, result.Err
}

// newNavigationPlan wraps a pre-expanded Navigation Cache path into a
// single-block plan the executor can run without consulting the tree
// again (spec §4.2 "pre-expansion contract").
func newNavigationPlan(teamID, targetNode string, transitions map[string]interface{}) *models.Plan {
	navID := uuid.NewString()
	plan := &models.Plan{
		ID:     uuid.NewString(),
		TeamID: teamID,
		Name:   "navigate:" + targetNode,
		Blocks: []*models.Block{
			{ID: "start", Type: models.BlockStart},
			{ID: navID, Type: models.BlockNavigation, Config: map[string]interface{}{
				"target_node": targetNode,
				"transitions": transitions,
			}},
			{ID: "success", Type: models.BlockSuccess},
			{ID: "failure", Type: models.BlockFailure},
		},
		Edges: []*models.Edge{
			{ID: uuid.NewString(), From: "start", To: navID, Handle: models.HandleSuccess},
			{ID: uuid.NewString(), From: navID, To: "success", Handle: models.HandleSuccess},
			{ID: uuid.NewString(), From: navID, To: "failure", Handle: models.HandleFailure},
		},
	}
	return plan
}

// newActionBatchPlan wires an ordered list of action blocks into a linear
// plan. Every block stops the execution on its first failure and carries
// no RetryPolicy; the batch has no retry or failure companion sequences,
// so nothing is replayed and no cleanup actions run after a failure.
func newActionBatchPlan(teamID string, actions []models.ActionTemplate) (*models.Plan, error) {
	if len(actions) == 0 {
		return nil, apierr.New(apierr.KindInvalidInput, "action batch must contain at least one action")
	}
	blocks := []*models.Block{{ID: "start", Type: models.BlockStart}}
	edges := make([]*models.Edge, 0, len(actions)+2)
	prev := "start"
	for i, action := range actions {
		id := uuid.NewString()
		blocks = append(blocks, &models.Block{
			ID:   id,
			Type: models.BlockAction,
			Config: map[string]interface{}{
				"type":   action.Type,
				"params": action.Params,
			},
			OnFailure: models.FailureActionStop,
		})
		edges = append(edges, &models.Edge{ID: uuid.NewString(), From: prev, To: id, Handle: models.HandleSuccess})
		if i == len(actions)-1 {
			edges = append(edges, &models.Edge{ID: uuid.NewString(), From: id, To: "success", Handle: models.HandleSuccess})
		}
		edges = append(edges, &models.Edge{ID: uuid.NewString(), From: id, To: "failure", Handle: models.HandleFailure})
		prev = id
	}
	blocks = append(blocks, &models.Block{ID: "success", Type: models.BlockSuccess}, &models.Block{ID: "failure", Type: models.BlockFailure})

	plan := &models.Plan{ID: uuid.NewString(), TeamID: teamID, Name: "action_batch", Blocks: blocks, Edges: edges}
	if err := plan.Validate(); err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidInput, "assembled action batch failed validation", err)
	}
	return plan, nil
}

// newVerificationPlan wraps a single verification into a one-block plan.
func newVerificationPlan(teamID, verificationType string, params map[string]interface{}, expected interface{}) *models.Plan {
	verifyID := uuid.NewString()
	cfg := map[string]interface{}{"verification_type": verificationType, "params": params, "expected": expected}
	return &models.Plan{
		ID:     uuid.NewString(),
		TeamID: teamID,
		Name:   "verify:" + verificationType,
		Blocks: []*models.Block{
			{ID: "start", Type: models.BlockStart},
			{ID: verifyID, Type: models.BlockVerification, Config: cfg},
			{ID: "success", Type: models.BlockSuccess},
			{ID: "failure", Type: models.BlockFailure},
		},
		Edges: []*models.Edge{
			{ID: uuid.NewString(), From: "start", To: verifyID, Handle: models.HandleSuccess},
			{ID: uuid.NewString(), From: verifyID, To: "success", Handle: models.HandleSuccess},
			{ID: uuid.NewString(), From: verifyID, To: "failure", Handle: models.HandleFailure},
		},
	}
}
