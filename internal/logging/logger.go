package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Logger is the logging surface used across the console.
// args are optional context values (errors, maps) printed after the message.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// StdLogger writes leveled lines through the standard library logger.
type StdLogger struct {
	std   *log.Logger
	debug bool
}

var _ Logger = (*StdLogger)(nil)

func NewStdLogger(w io.Writer, debug bool) *StdLogger {
	if w == nil {
		w = os.Stderr
	}
	return &StdLogger{std: log.New(w, "", log.LstdFlags), debug: debug}
}

func (l *StdLogger) print(level, msg string, args []interface{}) {
	line := level + " " + msg
	for _, arg := range args {
		line += fmt.Sprintf(" %+v", arg)
	}
	l.std.Println(line)
}

func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l *StdLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l *StdLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l *StdLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }

// Nop discards everything.
type Nop struct{}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}
