package billing

import (
	"context"

	"github.com/kiranalabs/lib-billing/billing/log"
)

type contextKey string

// loggerContextKey is the context key used to store the session logger.
var loggerContextKey = contextKey("billing_logger")

// ContextWithLogger returns a context carrying the given logger.
func ContextWithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext extracts the logger from the context, returning a
// no-op logger when none is attached.
//
//nolint:ireturn
func LoggerFromContext(ctx context.Context) log.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(log.Logger); ok && logger != nil {
		return logger
	}

	return &log.NopLogger{}
}
