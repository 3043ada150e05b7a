package logger

import "context"

// nopLogger discards all log entries. Used in tests and as a safe fallback.
type nopLogger struct{}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(msg string, fields ...Field) {}
func (nopLogger) Info(msg string, fields ...Field)  {}
func (nopLogger) Warn(msg string, fields ...Field)  {}
func (nopLogger) Error(msg string, fields ...Field) {}

func (n nopLogger) With(fields ...Field) Logger            { return n }
func (n nopLogger) WithContext(ctx context.Context) Logger { return n }

func (nopLogger) Level() Level { return LevelError }
