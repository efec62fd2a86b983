package blockexec

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_SucceedsAfterRetries(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffStrategy: BackoffConstant}

	attempts := 0
	out, err := policy.Execute(context.Background(), func() (map[string]interface{}, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient")
		}
		return map[string]interface{}{"ok": true}, nil
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Equal(t, true, out["ok"])
}

func TestRetryPolicy_ExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 2, InitialDelay: time.Millisecond}

	attempts := 0
	_, err := policy.Execute(context.Background(), func() (map[string]interface{}, error) {
		attempts++
		return nil, errors.New("permanent")
	}, nil)

	require.Error(t, err)
	require.Equal(t, 2, attempts)
}

func TestRetryPolicy_RespectsRetryableErrorsAllowlist(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, RetryableErrors: []string{"timeout"}}

	attempts := 0
	_, err := policy.Execute(context.Background(), func() (map[string]interface{}, error) {
		attempts++
		return nil, errors.New("permission denied")
	}, nil)

	require.Error(t, err)
	require.Equal(t, 1, attempts)
}

func TestRetryPolicy_GetDelay_Exponential(t *testing.T) {
	policy := RetryPolicy{InitialDelay: time.Second, MaxDelay: 10 * time.Second, BackoffStrategy: BackoffExponential}

	require.Equal(t, time.Second, policy.GetDelay(1))
	require.Equal(t, 2*time.Second, policy.GetDelay(2))
	require.Equal(t, 4*time.Second, policy.GetDelay(3))
	require.Equal(t, 10*time.Second, policy.GetDelay(10))
}

func TestRetryPolicy_ContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, InitialDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := policy.Execute(ctx, func() (map[string]interface{}, error) {
		return nil, errors.New("x")
	}, nil)

	require.Error(t, err)
}
