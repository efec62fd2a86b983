package rest

import (
	"context"

	"github.com/virtualpytest/core/internal/apierr"
	"github.com/virtualpytest/core/internal/logger"
	"github.com/virtualpytest/core/internal/registry"
	"github.com/virtualpytest/core/internal/wsnotify"
	"github.com/virtualpytest/core/pkg/blockexec"
	"github.com/virtualpytest/core/pkg/jobs"
	"github.com/virtualpytest/core/pkg/models"
	"github.com/virtualpytest/core/pkg/navcache"
	"github.com/virtualpytest/core/pkg/planner"
	"github.com/virtualpytest/core/pkg/session"
)

// CapabilityCatalog enumerates the actions and verifications a device
// supports, read by capabilities/actions and capabilities/verifications
// (spec §4.1) with no lock required.
type CapabilityCatalog interface {
	ListActions(ctx context.Context, deviceID string) ([]string, error)
	ListVerifications(ctx context.Context, deviceID string) ([]string, error)
	DeviceModel(ctx context.Context, deviceID string) (string, error)
}

// TestCaseStore persists saved graphs for testcases/save|load|list.
type TestCaseStore interface {
	Put(ctx context.Context, teamID, name string, plan *models.Plan) error
	Get(ctx context.Context, teamID, name string) (*models.Plan, error)
	List(ctx context.Context, teamID string) ([]string, error)
}

// MappingRecorder persists a caller-resolved disambiguation so the next
// plans/generate call for the same phrase short-circuits through it (spec
// §4.3 step 5, seed scenario 3).
type MappingRecorder interface {
	PutLearnedMapping(ctx context.Context, m *models.LearnedMapping) error
}

// Deps wires every component the REST surface dispatches into.
type Deps struct {
	Log *logger.Logger

	Sessions     *session.Manager
	Registry     *registry.Registry
	NavCache     *navcache.Cache
	Planner      *planner.Builder
	BlockExec    *blockexec.Executor
	Jobs         *jobs.Registry
	Proxy        *jobs.Proxy
	TestCases    TestCaseStore
	Capabilities CapabilityCatalog
	Mappings     MappingRecorder
	Watch        *wsnotify.Hub

	ExecutionTTL int // seconds a take_control session lock is held for, renewed by callers
}

// planContext loads the {node, action, verification} universe the AI Plan
// Builder ranks and filters (spec §4.3 step 1).
func (d *Deps) planContext(ctx context.Context, deviceID, teamID, interfaceID string) (planner.Context, error) {
	graph, err := d.NavCache.Get(ctx, teamID, interfaceID)
	if err != nil {
		return planner.Context{}, err
	}
	labels := graph.Labels()

	actions, err := d.Capabilities.ListActions(ctx, deviceID)
	if err != nil {
		return planner.Context{}, err
	}
	verifications, err := d.Capabilities.ListVerifications(ctx, deviceID)
	if err != nil {
		return planner.Context{}, err
	}
	deviceModel, err := d.Capabilities.DeviceModel(ctx, deviceID)
	if err != nil {
		return planner.Context{}, err
	}

	return planner.Context{
		DeviceModel:       deviceModel,
		NodeLabels:        labels,
		ActionNames:       actions,
		VerificationNames: verifications,
	}, nil
}

// ensureOwner validates that the caller's session_id/owner_id pair holds
// the device lock every mutating device-facing route requires (spec §5.2
// control flow: resolve host, verify lock, admit into the job registry).
func (d *Deps) ensureOwner(sessionID, ownerID string) error {
	if sessionID == "" || ownerID == "" {
		return apierr.New(apierr.KindInvalidInput, "session_id and owner_id are required")
	}
	_, err := d.Sessions.RequireOwner(sessionID, ownerID)
	return err
}

// memoryTestCaseStore is the default TestCaseStore, a flat in-memory table
// keyed by (team_id, name) — the teacher's storage memory-table pattern
// applied to saved graphs.
type memoryTestCaseStore struct {
	byKey map[string]*models.Plan
}

// NewMemoryTestCaseStore constructs an in-memory TestCaseStore.
func NewMemoryTestCaseStore() TestCaseStore {
	return &memoryTestCaseStore{byKey: make(map[string]*models.Plan)}
}

func testCaseKey(teamID, name string) string { return teamID + "::" + name }

func (s *memoryTestCaseStore) Put(ctx context.Context, teamID, name string, plan *models.Plan) error {
	s.byKey[testCaseKey(teamID, name)] = plan
	return nil
}

func (s *memoryTestCaseStore) Get(ctx context.Context, teamID, name string) (*models.Plan, error) {
	plan, ok := s.byKey[testCaseKey(teamID, name)]
	if !ok {
		return nil, apierr.New(apierr.KindNotFound, "test case not found")
	}
	return plan, nil
}

func (s *memoryTestCaseStore) List(ctx context.Context, teamID string) ([]string, error) {
	var names []string
	prefix := teamID + "::"
	for key := range s.byKey {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			names = append(names, key[len(prefix):])
		}
	}
	return names, nil
}
