package logging

import (
	"context"

	"go.uber.org/zap"
)

// nopLogger is a safe placeholder for callers that were not given a logger.
type nopLogger struct{}

func (n nopLogger) Debug(ctx context.Context, msg string, fields ...zap.Field) {}
func (n nopLogger) Info(ctx context.Context, msg string, fields ...zap.Field)  {}
func (n nopLogger) Warn(ctx context.Context, msg string, fields ...zap.Field)  {}
func (n nopLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {}
func (n nopLogger) With(fields ...zap.Field) Logger                            { return n }
func (n nopLogger) Sync() error                                                { return nil }

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
