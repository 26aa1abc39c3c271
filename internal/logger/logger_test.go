package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesJSONWithRole(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "cli", "info")
	require.NoError(t, err)

	l.Info().Str("key", "autofill_profiles").Msg("loaded")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "cli", entry["role"])
	assert.Equal(t, "autofill_profiles", entry["key"])
	assert.Equal(t, "loaded", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "cli", "warn")
	require.NoError(t, err)

	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger("cli", "loud")
	require.Error(t, err)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "mcp", "debug")
	require.NoError(t, err)

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Debug().Msg("from context")

	assert.Contains(t, buf.String(), "from context")
	assert.Contains(t, buf.String(), `"role":"mcp"`)
}

func TestNop(t *testing.T) {
	l := Nop()
	require.NotNil(t, l)
	l.Error().Msg("discarded")
}
