package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jilio/simplestate/internal/logging"
)

func TestNew_Formats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{name: "json", format: "json", want: `"msg":"hello"`},
		{name: "text", format: "text", want: "msg=hello"},
		{name: "unknown falls back to json", format: "yaml", want: `"level":"INFO"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logging.New("info", tt.format, &buf).Info("hello")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New("warn", "json", &buf)

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_DebugIncludesSource(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logging.New("debug", "json", &buf).Debug("with source")
	assert.Contains(t, buf.String(), `"source"`)
}

func TestNew_RedactsSensitiveFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New("info", "json", &buf)

	logger.Info("login",
		slog.String("token", "abc123"),
		slog.String("header", "Bearer abcdefghijklmnop"),
		slog.String("password", "hunter2"),
		slog.String("user", "ann"),
	)

	out := buf.String()
	assert.NotContains(t, out, "abc123")
	assert.NotContains(t, out, "abcdefghijklmnop")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "ann")
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Default(), logging.FromContext(context.Background()))

	var buf bytes.Buffer
	logger := logging.New("info", "json", &buf)
	ctx := logging.WithLogger(context.Background(), logger)

	got := logging.FromContext(ctx)
	require.Same(t, logger, got)
}
