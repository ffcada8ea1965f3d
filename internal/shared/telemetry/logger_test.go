package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(nil)
		SetLevel("info")
	})
	return &buf
}

func TestInfoWritesJSONLine(t *testing.T) {
	buf := capture(t)

	Info("parse.completed", map[string]any{"format": "pdf", "chars": 42, "err": errors.New("boom")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "parse.completed", entry["msg"])
	assert.Equal(t, "pdf", entry["format"])
	assert.Equal(t, float64(42), entry["chars"])
	assert.Equal(t, "boom", entry["err"])
	assert.NotEmpty(t, entry["ts"])
	assert.NotContains(t, entry, "time")
}

func TestSetLevelFiltersDebug(t *testing.T) {
	buf := capture(t)

	Debug("hidden", nil)
	assert.Zero(t, buf.Len())

	SetLevel("debug")
	Debug("shown", nil)
	assert.True(t, strings.Contains(buf.String(), `"level":"debug"`))
}

func TestWarnAndErrorLevels(t *testing.T) {
	buf := capture(t)

	Warn("w", nil)
	Error("e", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"level":"warn"`)
	assert.Contains(t, lines[1], `"level":"error"`)
}
