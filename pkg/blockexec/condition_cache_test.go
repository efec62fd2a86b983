package blockexec

import "testing"

import "github.com/stretchr/testify/require"

func TestConditionEvaluator_Evaluate(t *testing.T) {
	e := NewConditionEvaluator(10)

	ok, err := e.Evaluate("output.status == \"ready\"", map[string]interface{}{"status": "ready"}, nil)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = e.Evaluate("output.status == \"ready\"", map[string]interface{}{"status": "busy"}, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConditionEvaluator_UsesVars(t *testing.T) {
	e := NewConditionEvaluator(10)
	ok, err := e.Evaluate("vars.retries < 3", nil, map[string]interface{}{"retries": 1})
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConditionEvaluator_CachesCompiledProgram(t *testing.T) {
	e := NewConditionEvaluator(1)
	_, err := e.Evaluate("output.a == 1", map[string]interface{}{"a": 1}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, e.cache.len())

	_, err = e.Evaluate("output.a == 1", map[string]interface{}{"a": 1}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, e.cache.len())
}

func TestConditionEvaluator_NonBooleanError(t *testing.T) {
	e := NewConditionEvaluator(10)
	_, err := e.Evaluate("output.a", map[string]interface{}{"a": 1}, nil)
	require.Error(t, err)
}
