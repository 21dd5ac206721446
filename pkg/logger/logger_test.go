package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriticalLevelName(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelInfo, "json")

	log.Critical("db down", "attempt", 3)

	assert.Contains(t, buf.String(), `"level":"CRITICAL"`)
	assert.Contains(t, buf.String(), `"service":"relief-grid"`)
}

func TestBusinessErrorSkipsNil(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, "text")

	log.BusinessError("grids.create: duplicate", nil)
	require.Zero(t, buf.Len())

	log.BusinessError("grids.create: duplicate", errors.New("duplicate grid code"), "code", "A-1")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code=A-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("", "development"))
	assert.Equal(t, slog.LevelInfo, parseLevel("", "production"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" Warning ", "production"))
	assert.Equal(t, LevelCritical, parseLevel("fatal", "production"))
}

func TestContextRoundTrip(t *testing.T) {
	fallback := NewNop()
	scoped := NewNop().With("request_id", "abc")

	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.Same(t, scoped, FromContext(WithContext(context.Background(), scoped), fallback))
}
