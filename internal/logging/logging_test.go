package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)

	_, err = New(Config{Format: "xml"})
	assert.Error(t, err)

	logger, err := New(Config{Level: "debug", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = New(Config{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestDataQuality(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := FromZap(zap.New(core)).WithDocument("tower.json")

	logger.DataQuality("/site/slab", "OpenSurfaceApproximation", "low", zap.String("node_id", "slab"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "tower.json", fields["document"])
	assert.Equal(t, "/site/slab", fields["entity"])
	assert.Equal(t, "OpenSurfaceApproximation", fields["issue"])
	assert.Equal(t, "data_quality", fields["type"])
	assert.Equal(t, "slab", fields["node_id"])
}

func TestStageIsDebug(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, zapcore.InfoLevel).Stage("parse", time.Millisecond)
	assert.Empty(t, buf.String())

	NewWriter(&buf, zapcore.DebugLevel).Stage("parse", time.Millisecond)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "parse", entry["stage"])
	assert.Equal(t, "Stage finished", entry["msg"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().DataQuality("x", "y", "z")
	})
}
