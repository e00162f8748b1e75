// Package logging provides the logger collaborator used by the command,
// pagination and modal layers. It sits on top of log/slog and can mirror
// important records to the console and forward them to an audit sink.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

type Logger interface {
	Log(msg string, level slog.Level, scope string, mirror bool, args ...any)
	Debug(scope, msg string, args ...any)
	Info(scope, msg string, args ...any)
	Warn(scope, msg string, args ...any)
	// Error logs err and always mirrors the record to the console.
	Error(scope, msg string, err error, args ...any)
}

// Entry is what a Sink receives for every forwarded record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Scope   string
	Message string
	Attrs   map[string]any
}

type Sink interface {
	Record(entry Entry)
}

type SlogLogger struct {
	logger    *slog.Logger
	console   io.Writer
	consoleMu sync.Mutex
	sink      Sink
	sinkLevel slog.Level
	now       func() time.Time
}

type Option func(*SlogLogger)

// WithConsole sets where mirrored records are written. Defaults to stderr.
func WithConsole(w io.Writer) Option {
	return func(l *SlogLogger) { l.console = w }
}

// WithSink forwards records at or above level to sink. Records tagged with
// the "audit" attribute are forwarded regardless of level.
func WithSink(sink Sink, level slog.Level) Option {
	return func(l *SlogLogger) {
		l.sink = sink
		l.sinkLevel = level
	}
}

func New(logger *slog.Logger, opts ...Option) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &SlogLogger{
		logger:    logger,
		console:   os.Stderr,
		sinkLevel: slog.LevelWarn,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SlogLogger) Log(msg string, level slog.Level, scope string, mirror bool, args ...any) {
	l.logger.Log(context.Background(), level, msg, append([]any{"scope", scope}, args...)...)

	if mirror && l.console != nil {
		l.consoleMu.Lock()
		fmt.Fprintf(l.console, "%s [%s] %s: %s%s\n", l.now().Format(time.DateTime), level, scope, msg, formatArgs(args))
		l.consoleMu.Unlock()
	}

	if l.sink != nil && (level >= l.sinkLevel || hasAudit(args)) {
		l.sink.Record(Entry{
			Time:    l.now(),
			Level:   level,
			Scope:   scope,
			Message: msg,
			Attrs:   argsToMap(args),
		})
	}
}

func (l *SlogLogger) Debug(scope, msg string, args ...any) {
	l.Log(msg, slog.LevelDebug, scope, false, args...)
}

func (l *SlogLogger) Info(scope, msg string, args ...any) {
	l.Log(msg, slog.LevelInfo, scope, false, args...)
}

func (l *SlogLogger) Warn(scope, msg string, args ...any) {
	l.Log(msg, slog.LevelWarn, scope, false, args...)
}

func (l *SlogLogger) Error(scope, msg string, err error, args ...any) {
	l.Log(msg, slog.LevelError, scope, true, append(args, "error", err)...)
}

// Audit marks a record for the audit sink regardless of its level.
var Audit = []any{"audit", true}

func hasAudit(args []any) bool {
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok && k == "audit" {
			if v, ok := args[i+1].(bool); ok && v {
				return true
			}
		}
	}
	return false
}

func argsToMap(args []any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	m := make(map[string]any, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		k, ok := args[i].(string)
		if !ok || k == "audit" {
			continue
		}
		if err, ok := args[i+1].(error); ok {
			m[k] = err.Error()
			continue
		}
		m[k] = args[i+1]
	}
	return m
}

func formatArgs(args []any) string {
	var out string
	for i := 0; i+1 < len(args); i += 2 {
		if k, ok := args[i].(string); ok && k == "audit" {
			continue
		}
		out += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Log(string, slog.Level, string, bool, ...any) {}
func (nopLogger) Debug(string, string, ...any)                 {}
func (nopLogger) Info(string, string, ...any)                  {}
func (nopLogger) Warn(string, string, ...any)                  {}
func (nopLogger) Error(string, string, error, ...any)          {}

// Nop returns a Logger that drops everything.
func Nop() Logger { return nopLogger{} }
