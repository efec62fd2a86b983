package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimilarity_ExactMatch(t *testing.T) {
	require.Equal(t, 1.0, Similarity("settings", "settings"))
}

func TestSimilarity_CloseMatch(t *testing.T) {
	s := Similarity("setings", "settings")
	require.Greater(t, s, 0.8)
	require.Less(t, s, 1.0)
}

func TestBestMatch(t *testing.T) {
	best, score := BestMatch("wifi settings", []string{"home", "wifi settings", "bluetooth"})
	require.Equal(t, "wifi settings", best)
	require.Equal(t, 1.0, score)
}

func TestTopMatches_DetectsAmbiguity(t *testing.T) {
	top := TopMatches("setting", []string{"settings", "setting2", "home"}, 0.2)
	require.GreaterOrEqual(t, len(top), 2)
}
