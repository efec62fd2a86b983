package planner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprint_StableAcrossWhitespaceAndCase(t *testing.T) {
	nodes := []string{"home", "settings"}
	a := Fingerprint("team-1", "iface-1", "android-tv", "Go To   Settings", nodes)
	b := Fingerprint("team-1", "iface-1", "android-tv", "go to settings", nodes)
	require.Equal(t, a, b)
}

func TestFingerprint_DiffersByTeam(t *testing.T) {
	nodes := []string{"home", "settings"}
	a := Fingerprint("team-1", "iface-1", "android-tv", "go to settings", nodes)
	b := Fingerprint("team-2", "iface-1", "android-tv", "go to settings", nodes)
	require.NotEqual(t, a, b)
}

func TestFingerprint_DiffersByDeviceModel(t *testing.T) {
	nodes := []string{"home", "settings"}
	a := Fingerprint("team-1", "iface-1", "android-tv", "go to settings", nodes)
	b := Fingerprint("team-1", "iface-1", "web", "go to settings", nodes)
	require.NotEqual(t, a, b)
}

func TestFingerprint_OrderIndependentInAvailableNodes(t *testing.T) {
	a := Fingerprint("team-1", "iface-1", "android-tv", "go to settings", []string{"home", "settings", "wifi"})
	b := Fingerprint("team-1", "iface-1", "android-tv", "go to settings", []string{"wifi", "home", "settings"})
	require.Equal(t, a, b)
}

func TestFingerprint_DiffersByAvailableNodes(t *testing.T) {
	a := Fingerprint("team-1", "iface-1", "android-tv", "go to settings", []string{"home", "settings"})
	b := Fingerprint("team-1", "iface-1", "android-tv", "go to settings", []string{"home", "settings", "wifi"})
	require.NotEqual(t, a, b)
}

func TestTokenize_DropsStopwords(t *testing.T) {
	toks := Tokenize(Normalize("go to the wifi settings"))
	require.Equal(t, []string{"wifi", "settings"}, toks)
}
