package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jilio/simplestate/internal/config"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 0, cfg.Counter.Initial)
	assert.Equal(t, 10, cfg.Counter.Max)
	assert.Equal(t, 3, cfg.Counter.Increments)
	assert.Zero(t, cfg.Counter.Rate.PerSecond)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
  format: json
counter:
  initial: 2
  max: 5
  rate:
    per_second: 10
    burst: 2
`)

	cfg, err := config.Load(config.WithFile(path))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Counter.Initial)
	assert.Equal(t, 5, cfg.Counter.Max)
	assert.Equal(t, 3, cfg.Counter.Increments, "unset keys keep their default")
	assert.InDelta(t, 10.0, cfg.Counter.Rate.PerSecond, 0.001)
	assert.Equal(t, 2, cfg.Counter.Rate.Burst)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "counter:\n  max: 5\n")

	t.Setenv("SIMPLESTATE_COUNTER_MAX", "7")
	t.Setenv("SIMPLESTATE_COUNTER_RATE_PER_SECOND", "2.5")
	t.Setenv("SIMPLESTATE_TELEMETRY_ENABLED", "true")

	cfg, err := config.Load(config.WithFile(path))
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Counter.Max)
	assert.InDelta(t, 2.5, cfg.Counter.Rate.PerSecond, 0.001)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(config.WithFile(filepath.Join(t.TempDir(), "nope.yaml")))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() config.Config {
		return config.Config{
			Log:     config.LogConfig{Level: "info", Format: "json"},
			Counter: config.CounterConfig{Max: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{
			name:    "bad level",
			mutate:  func(c *config.Config) { c.Log.Level = "trace" },
			wantErr: "log.level",
		},
		{
			name:    "bad format",
			mutate:  func(c *config.Config) { c.Log.Format = "xml" },
			wantErr: "log.format",
		},
		{
			name:    "max below initial",
			mutate:  func(c *config.Config) { c.Counter.Initial = 3 },
			wantErr: "counter.max",
		},
		{
			name:    "negative increments",
			mutate:  func(c *config.Config) { c.Counter.Increments = -1 },
			wantErr: "counter.increments",
		},
		{
			name: "rate without burst",
			mutate: func(c *config.Config) {
				c.Counter.Rate.PerSecond = 1
			},
			wantErr: "counter.rate.burst",
		},
		{
			name: "telemetry without service name",
			mutate: func(c *config.Config) {
				c.Telemetry.Enabled = true
			},
			wantErr: "telemetry.service_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
