package telemetry_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jilio/simplestate/internal/telemetry"
)

func TestNew_WritesSpans(t *testing.T) {
	var buf bytes.Buffer

	p, err := telemetry.New("counter-test", &buf)
	require.NoError(t, err)

	_, span := p.Tracer.Tracer("test").Start(context.Background(), "dispatch")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), `"Name":"dispatch"`)
	assert.Contains(t, buf.String(), "counter-test")
}

func TestShutdown_NilSafe(t *testing.T) {
	var p *telemetry.Providers
	assert.NoError(t, p.Shutdown(context.Background()))
	assert.NoError(t, (&telemetry.Providers{}).Shutdown(context.Background()))
}
