package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMappingKey_Deterministic(t *testing.T) {
	a := mappingKey("team-1", "iface-1", "go to wifi")
	b := mappingKey("team-1", "iface-1", "go to wifi")
	require.Equal(t, a, b)
}

func TestMappingKey_DiffersByPhrase(t *testing.T) {
	a := mappingKey("team-1", "iface-1", "go to wifi")
	b := mappingKey("team-1", "iface-1", "go to settings")
	require.NotEqual(t, a, b)
}
