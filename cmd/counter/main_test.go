package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "counter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		config string
		want   string
	}{
		{
			name:   "increments",
			config: "counter:\n  increments: 2\n",
			want:   "count: 2\n",
		},
		{
			name:   "max vetoes the rest",
			config: "counter:\n  initial: 0\n  max: 1\n  increments: 3\n",
			want:   "count: 1\n",
		},
		{
			name:   "rate limit vetoes beyond the burst",
			config: "counter:\n  increments: 4\n  rate:\n    per_second: 0.001\n    burst: 2\n",
			want:   "count: 2\n",
		},
		{
			name:   "telemetry enabled",
			config: "telemetry:\n  enabled: true\ncounter:\n  initial: 5\n  increments: 1\n",
			want:   "count: 6\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), []string{writeConfig(t, tt.config)}, &stdout, &stderr)
			require.NoError(t, err, stderr.String())
			assert.Equal(t, tt.want, stdout.String())
		})
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{writeConfig(t, "log:\n  level: loud\n")}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Empty(t, stdout.String())
}
