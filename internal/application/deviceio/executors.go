// Package deviceio adapts the Block & Graph Executor's generic block
// dispatch onto the concrete device-facing seams defined in pkg/adapters,
// proxying through the Proxy & Async Job Registry's host router (spec
// §4.4 navigation/action/verification block types, §4.6 adapters).
package deviceio

import (
	"context"
	"fmt"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/pkg/adapters"
	"github.com/virtualpytest/core/pkg/blockexec"
	"github.com/virtualpytest/core/pkg/models"
)

// ProxyActionExecutor implements adapters.ActionExecutor by forwarding the
// action to the device's host through the stateless Proxy.
type ProxyActionExecutor struct {
	forward func(ctx context.Context, deviceID, path string, body map[string]interface{}) (map[string]interface{}, error)
}

// NewProxyActionExecutor wraps a Proxy's Forward method.
func NewProxyActionExecutor(forward func(ctx context.Context, deviceID, path string, body map[string]interface{}) (map[string]interface{}, error)) *ProxyActionExecutor {
	return &ProxyActionExecutor{forward: forward}
}

func (e *ProxyActionExecutor) ExecuteAction(ctx context.Context, deviceID string, action models.ActionTemplate) (map[string]interface{}, error) {
	return e.forward(ctx, deviceID, "/actions/execute", map[string]interface{}{
		"type":   action.Type,
		"params": action.Params,
	})
}

// ProxyVerificationExecutor implements adapters.VerificationExecutor over
// the same Proxy seam.
type ProxyVerificationExecutor struct {
	forward func(ctx context.Context, deviceID, path string, body map[string]interface{}) (map[string]interface{}, error)
}

// NewProxyVerificationExecutor wraps a Proxy's Forward method.
func NewProxyVerificationExecutor(forward func(ctx context.Context, deviceID, path string, body map[string]interface{}) (map[string]interface{}, error)) *ProxyVerificationExecutor {
	return &ProxyVerificationExecutor{forward: forward}
}

func (e *ProxyVerificationExecutor) Verify(ctx context.Context, deviceID string, kind string, params map[string]interface{}) (bool, map[string]interface{}, error) {
	resp, err := e.forward(ctx, deviceID, "/verifications/execute", map[string]interface{}{
		"verification_type": kind,
		"params":             params,
	})
	if err != nil {
		return false, nil, err
	}
	passed, _ := resp["passed"].(bool)
	return passed, resp, nil
}

// navigationExecutor runs a navigation block: it walks the pre-expanded
// action sequence embedded in the block's config by the Pathfinder, firing
// each action through the ActionExecutor in order (spec §4.2 pre-expansion
// contract — the executor never re-queries the navigation tree).
type navigationExecutor struct {
	actions adapters.ActionExecutor
}

// NewNavigationExecutor constructs the blockexec.Executor for "navigation"
// blocks.
func NewNavigationExecutor(actions adapters.ActionExecutor) blockexec.Executor {
	return &navigationExecutor{actions: actions}
}

func (e *navigationExecutor) Execute(ctx context.Context, bctx *blockexec.BlockContext) (map[string]interface{}, error) {
	transitions, _ := bctx.Config["transitions"].(map[string]interface{})
	for edgeID, raw := range transitions {
		templates, err := decodeActionTemplates(raw)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindInternal, fmt.Sprintf("malformed transition %s", edgeID), err)
		}
		for _, action := range templates {
			if _, err := e.actions.ExecuteAction(ctx, bctx.DeviceID, action); err != nil {
				return nil, err
			}
		}
	}
	target, _ := bctx.Config["target_node"].(string)
	return map[string]interface{}{"target_node": target}, nil
}

// actionExecutor runs a single "action" block.
type actionExecutor struct {
	actions adapters.ActionExecutor
}

// NewActionExecutor constructs the blockexec.Executor for "action" blocks.
func NewActionExecutor(actions adapters.ActionExecutor) blockexec.Executor {
	return &actionExecutor{actions: actions}
}

func (e *actionExecutor) Execute(ctx context.Context, bctx *blockexec.BlockContext) (map[string]interface{}, error) {
	actionType, _ := bctx.Config["type"].(string)
	if actionType == "" {
		return nil, apierr.New(apierr.KindInvalidInput, "action block missing required config field \"type\"")
	}
	params, _ := bctx.Config["params"].(map[string]interface{})
	return e.actions.ExecuteAction(ctx, bctx.DeviceID, models.ActionTemplate{Type: actionType, Params: params})
}

// verificationExecutor runs a single "verification" block.
type verificationExecutor struct {
	verifications adapters.VerificationExecutor
}

// NewVerificationExecutor constructs the blockexec.Executor for
// "verification" blocks.
func NewVerificationExecutor(verifications adapters.VerificationExecutor) blockexec.Executor {
	return &verificationExecutor{verifications: verifications}
}

func (e *verificationExecutor) Execute(ctx context.Context, bctx *blockexec.BlockContext) (map[string]interface{}, error) {
	kind, _ := bctx.Config["verification_type"].(string)
	if kind == "" {
		return nil, apierr.New(apierr.KindInvalidInput, "verification block missing required config field \"verification_type\"")
	}
	params, _ := bctx.Config["params"].(map[string]interface{})
	passed, output, err := e.verifications.Verify(ctx, bctx.DeviceID, kind, params)
	if err != nil {
		return nil, err
	}
	if !passed {
		return output, fmt.Errorf("verification %q did not pass", kind)
	}
	return output, nil
}

func decodeActionTemplates(raw interface{}) ([]models.ActionTemplate, error) {
	switch v := raw.(type) {
	case []models.ActionTemplate:
		return v, nil
	case []interface{}:
		out := make([]models.ActionTemplate, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("expected action template, got %T", item)
			}
			actionType, _ := m["type"].(string)
			params, _ := m["params"].(map[string]interface{})
			out = append(out, models.ActionTemplate{Type: actionType, Params: params})
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported transition shape %T", raw)
	}
}
