package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapWrapper_CarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	child := log.With(map[string]interface{}{"taskType": "fetch-dataset"})
	child.Info("dataset fetched", map[string]interface{}{"dataset": "IPEDS Directory"})
	child.WithError(errors.New("boom")).Error("fetch failed", nil)

	entries := logs.All()
	assert.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "fetch-dataset", first["taskType"])
	assert.Equal(t, "IPEDS Directory", first["dataset"])

	second := entries[1].ContextMap()
	assert.Equal(t, "boom", second["error"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestNew_LevelGating(t *testing.T) {
	l := New("warn", "json", "stderr")
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l = New("debug", "console", "")
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Debug("ignored", nil)
		log.WithFields(map[string]interface{}{"a": 1}).Warn("ignored", nil)
	})
}
