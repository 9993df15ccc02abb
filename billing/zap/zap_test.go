package zap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kiranalabs/lib-billing/billing/log"
)

func observedLogger() (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return NewFromZap(zap.New(core)), logs
}

func TestLogDispatchesByLevel(t *testing.T) {
	t.Parallel()

	logger, logs := observedLogger()
	ctx := context.Background()

	logger.Log(ctx, logpkg.LevelDebug, "debug message")
	logger.Log(ctx, logpkg.LevelInfo, "info message")
	logger.Log(ctx, logpkg.LevelWarn, "warn message")
	logger.Log(ctx, logpkg.LevelError, "error message", logpkg.String("k", "v"))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, "v", entries[3].ContextMap()["k"])
}

func TestWithAttachesFields(t *testing.T) {
	t.Parallel()

	logger, logs := observedLogger()
	child := logger.With(logpkg.String("component", "billing_session"))

	child.Log(context.Background(), logpkg.LevelInfo, "hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "billing_session", entries[0].ContextMap()["component"])
}

func TestNewFallsBackToInfoOnUnknownLevel(t *testing.T) {
	t.Parallel()

	logger := New("verbose")

	assert.True(t, logger.Enabled(logpkg.LevelInfo))
	assert.False(t, logger.Enabled(logpkg.LevelDebug))
}

func TestNilLoggerIsSafe(t *testing.T) {
	t.Parallel()

	var logger *Logger

	logger.Log(context.Background(), logpkg.LevelInfo, "dropped")
	assert.False(t, logger.Enabled(logpkg.LevelError))
	assert.NotNil(t, logger.Raw())
}
