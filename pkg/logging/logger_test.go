package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextCorrelationRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetWidget(ctx))
	assert.Empty(t, GetAgentID(ctx))

	ctx = WithRequestID(ctx, "req-123")
	ctx = WithWidget(ctx, "resources")
	ctx = WithAgentID(ctx, "agent-9")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "resources", GetWidget(ctx))
	assert.Equal(t, "agent-9", GetAgentID(ctx))
}

func TestWithContextEmitsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZapLogger(Config{Level: DebugLevel, Format: "json", Output: &buf})
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithWidget(ctx, "monitoring")

	logger.WithContext(ctx).Info("poll served")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"widget":"monitoring"`)
}

func TestWithContextNoFieldsReturnsSameLogger(t *testing.T) {
	logger := NewNop()
	assert.Same(t, logger, logger.WithContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("debug"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, InfoLevel, ParseLevel("nonsense"))
}
