package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv() {
	for _, e := range os.Environ() {
		for i := 0; i < len(e); i++ {
			if e[i] == '=' {
				key := e[:i]
				if len(key) > 4 && key[:4] == "VPT_" {
					os.Unsetenv(key)
				}
				break
			}
		}
	}
}

func TestConfig_Load_DefaultValues(t *testing.T) {
	clearEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, 8585, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Server.CORS)
	assert.Empty(t, cfg.Server.APIKeys)

	assert.Equal(t, 20, cfg.Database.MaxConnections)
	assert.Equal(t, 5, cfg.Database.MinConnections)

	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, 5*time.Minute, cfg.NavCache.TTL)

	assert.Equal(t, 15, cfg.Planner.MaxNodes)
	assert.Equal(t, 10, cfg.Planner.MaxActions)
	assert.Equal(t, 8, cfg.Planner.MaxVerifications)
	assert.InDelta(t, 0.82, cfg.Planner.FuzzyThreshold, 0.001)
	assert.Equal(t, 90*24*time.Hour, cfg.Planner.PlanCacheRetain)

	assert.Equal(t, time.Hour, cfg.Executor.DefaultExecutionTimeout)
	assert.Equal(t, 2*time.Hour, cfg.Executor.ScriptExecutionTimeout)

	assert.Equal(t, 5*time.Minute, cfg.JobsProxy.Retain)
}

func TestConfig_Load_EnvOverrides(t *testing.T) {
	clearEnv()
	os.Setenv("VPT_PORT", "9090")
	os.Setenv("VPT_PLANNER_MAX_NODES", "20")
	os.Setenv("VPT_PLANNER_FUZZY_THRESHOLD", "0.9")
	os.Setenv("VPT_EXECUTION_RETAIN", "10m")
	defer clearEnv()

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Planner.MaxNodes)
	assert.InDelta(t, 0.9, cfg.Planner.FuzzyThreshold, 0.001)
	assert.Equal(t, 10*time.Minute, cfg.JobsProxy.Retain)
}

func TestConfig_Validate_InvalidPort(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0},
		Database: DatabaseConfig{URL: "postgres://x"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
	}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_MissingDatabaseURL(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: 8585},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_InvalidLogLevel(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8585},
		Database: DatabaseConfig{URL: "postgres://x"},
		Logging:  LoggingConfig{Level: "verbose", Format: "json"},
	}
	err := cfg.Validate()
	require.Error(t, err)
}

func TestConfig_Validate_FuzzyThresholdOutOfRange(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8585},
		Database: DatabaseConfig{URL: "postgres://x"},
		Logging:  LoggingConfig{Level: "info", Format: "json"},
		Planner:  PlannerConfig{FuzzyThreshold: 1.5},
	}
	err := cfg.Validate()
	require.Error(t, err)
}
