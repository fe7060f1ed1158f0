package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesRoleAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "api").With("request_id", "r-1")

	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "api", entry["role"])
	assert.Equal(t, "r-1", entry["request_id"])
	assert.Equal(t, "hello", entry["message"])
	assert.Contains(t, entry, "func")
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "lambda")

	ctx := l.WithContext(context.Background())
	FromContext(ctx).Warn().Msg("from ctx")

	assert.Contains(t, buf.String(), "from ctx")
}

func TestFromContext_WithoutLogger(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	l.Info().Msg("discarded")
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error().Msg("nothing")
	assert.NotNil(t, l.With("k", "v"))
}
