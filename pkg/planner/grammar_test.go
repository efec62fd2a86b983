package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtualpytest/core/pkg/models"
)

func TestParseScript_RecognizesKnownInstructions(t *testing.T) {
	lines := ParseScript("navigate to settings\ngibberish\ntap 10 20\npress OK\nverify text hello world\nsleep 500\n")
	require.Equal(t, []string{
		"navigate to settings",
		"tap 10 20",
		"press OK",
		"verify text hello world",
		"sleep 500",
	}, lines)
}

func TestAssemblePlan_BuildsValidLinearChain(t *testing.T) {
	plan, err := AssemblePlan([]string{"navigate to settings", "tap 10 20"}, Intent{})
	require.NoError(t, err)
	require.NoError(t, plan.Validate())

	start, err := plan.StartBlock()
	require.NoError(t, err)
	require.Equal(t, "start", start.ID)

	edge := plan.OutgoingEdge("start", models.HandleSuccess)
	require.NotNil(t, edge)
	require.Equal(t, "b0", edge.To)
}

func TestAssemblePlan_EmptyScript(t *testing.T) {
	plan, err := AssemblePlan(nil, Intent{})
	require.NoError(t, err)
	require.NoError(t, plan.Validate())
	edge := plan.OutgoingEdge("start", models.HandleSuccess)
	require.Equal(t, "success", edge.To)
}

func TestAssemblePlan_WrapsLoopBodyAfterLastNavigation(t *testing.T) {
	// "go to live then zap 2 times, for each zap check audio and video"
	lines := []string{"navigate to live", "press zap", "verify audio ok", "verify video ok"}
	plan, err := AssemblePlan(lines, Intent{HasLoop: true, LoopCount: 2})
	require.NoError(t, err)
	require.NoError(t, plan.Validate())

	loop, err := plan.GetBlock("loop")
	require.NoError(t, err)
	require.Equal(t, models.BlockLoop, loop.Type)
	require.Equal(t, 2, loop.Config["iterations"])

	// navigation stays outside the loop
	navEdge := plan.OutgoingEdge("start", models.HandleSuccess)
	require.Equal(t, "b0", navEdge.To)
	require.Equal(t, "loop", plan.OutgoingEdge("b0", models.HandleSuccess).To)

	// the loop's failure handle enters the body, its success handle exits
	require.Equal(t, "b1", plan.OutgoingEdge("loop", models.HandleFailure).To)
	require.Equal(t, "success", plan.OutgoingEdge("loop", models.HandleSuccess).To)

	// the last body block cycles back into the loop
	require.Equal(t, "loop", plan.OutgoingEdge("b3", models.HandleSuccess).To)
}

func TestAssemblePlan_NoLoopWhenIntentHasLoopButNothingFollowsNavigation(t *testing.T) {
	plan, err := AssemblePlan([]string{"navigate to live"}, Intent{HasLoop: true, LoopCount: 2})
	require.NoError(t, err)
	require.NoError(t, plan.Validate())
	_, err = plan.GetBlock("loop")
	require.Error(t, err)
}
