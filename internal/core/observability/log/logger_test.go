package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/rigidsim/internal/core/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.Log{Level: "loud"})
	assert.Error(t, err)

	l, err := New(config.Log{Level: "warn", Encoding: "console"})
	require.NoError(t, err)
	assert.Equal(t, LevelWarn, l.GetLevel())
}

func TestLevelGatesAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewWithZap(zap.New(core), LevelInfo)

	l.Debug("hidden")
	l.With(String("component", "sim")).Info("tick",
		Uint64("tick", 7),
		Float32("impulse", 1.5),
		Int("bodies", 3),
		Bool("ok", true),
		Error(errors.New("boom")),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "sim", ctx["component"])
	assert.Equal(t, uint64(7), ctx["tick"])
	assert.Equal(t, int64(3), ctx["bodies"])
	assert.Equal(t, true, ctx["ok"])
	assert.Equal(t, "boom", ctx["error"])

	l.SetLevel(LevelDebug)
	l.Debug("shown")
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, LevelDebug, l.GetLevel())
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Info("nothing")
	l.With(String("k", "v")).Error("nothing")
}
