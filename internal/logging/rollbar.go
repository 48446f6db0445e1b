package logging

import (
	"github.com/rollbar/rollbar-go"
)

// RollbarLogger reports warnings and errors to Rollbar and mirrors every
// entry to a local logger.
type RollbarLogger struct {
	local Logger
}

var _ Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(local Logger, token, env, host string) *RollbarLogger {
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetServerHost(host)
	rollbar.SetCodeVersion("evaluation-console")
	return &RollbarLogger{local: local}
}

func prepare(msg string, args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(args)+1)
	out = append(out, msg)
	return append(out, args...)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	l.local.Debug(msg, args...)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(prepare(msg, args)...)
	l.local.Info(msg, args...)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(prepare(msg, args)...)
	l.local.Warn(msg, args...)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(prepare(msg, args)...)
	l.local.Error(msg, args...)
}

// Close flushes queued Rollbar items.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}
