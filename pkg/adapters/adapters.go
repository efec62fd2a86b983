// Package adapters defines the External Interface Adapters (spec §4.6):
// the abstract seams this module calls through to reach concrete devices,
// screens, and language models. No vendor implementation lives here —
// per spec's Non-goals, wiring a real ADB/web driver or LLM backend is
// out of scope; these interfaces are what a deployment plugs into.
package adapters

import (
	"context"
	"time"

	"github.com/virtualpytest/core/pkg/models"
)

// ActionExecutor performs a single remote/ADB/web/desktop action against a
// device and reports whether it succeeded.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, deviceID string, action models.ActionTemplate) (map[string]interface{}, error)
}

// VerificationExecutor checks a condition against a device's current
// state (e.g. "is this text on screen") and reports a pass/fail result.
type VerificationExecutor interface {
	Verify(ctx context.Context, deviceID string, kind string, params map[string]interface{}) (bool, map[string]interface{}, error)
}

// ScreenCapture grabs the current frame/state from a device, the raw
// material verifications and the plan builder's context both consume.
type ScreenCapture interface {
	Capture(ctx context.Context, deviceID string) ([]byte, error)
}

// LLMRequest is a single call to the AI Plan Builder's language model step
// (spec §4.3 step 9).
type LLMRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// LLMResponse is the model's raw text reply, later parsed by the plan
// builder's grammar (spec §4.3 step 10).
type LLMResponse struct {
	Text       string
	TokensUsed int
}

// LLMClient is the AI Plan Builder's language-model adapter.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (*LLMResponse, error)
}

// Persistence is the minimal 4-operation storage contract every
// persisted entity (plan cache, learned mapping, execution history,
// navigation tree) is read and written through (spec §4.6).
type Persistence interface {
	Upsert(ctx context.Context, table string, key string, value interface{}) error
	GetByKey(ctx context.Context, table string, key string, dest interface{}) error
	ListByFilter(ctx context.Context, table string, filter map[string]interface{}, dest interface{}) error
	DeleteOlderThan(ctx context.Context, table string, cutoff time.Time) (int64, error)
}
