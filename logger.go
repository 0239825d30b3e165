package triangle

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for triangle and the providers and
// surfaces it renders with. By default nothing is logged.
//
// SetLogger is safe for concurrent use. Pass nil to restore silence.
//
// Log levels used:
//   - [slog.LevelDebug]: each step of the setup and frame sequence
//   - [slog.LevelInfo]: adapter selection, pipeline creation
//   - [slog.LevelWarn]: resource release problems
//
// Example:
//
//	triangle.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	sinksMu.Lock()
	defer sinksMu.Unlock()
	for s := range sinks {
		s.SetLogger(l)
	}
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by providers and surfaces that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// sinks holds the loggerSetters of open renderers so SetLogger reaches
// them. Implementations must be comparable, in practice pointers.
var (
	sinksMu sync.Mutex
	sinks   = map[loggerSetter]int{}
)

// attachLogger hands the current logger to v and keeps it updated until
// detachLogger.
func attachLogger(v any) {
	ls, ok := v.(loggerSetter)
	if !ok {
		return
	}
	sinksMu.Lock()
	sinks[ls]++
	sinksMu.Unlock()
	ls.SetLogger(Logger())
}

// detachLogger undoes attachLogger. When the last renderer using v lets
// go, v is reset to its silent default so it no longer writes to the
// triangle logger.
func detachLogger(v any) {
	ls, ok := v.(loggerSetter)
	if !ok {
		return
	}
	sinksMu.Lock()
	last := sinks[ls] <= 1
	if last {
		delete(sinks, ls)
	} else {
		sinks[ls]--
	}
	sinksMu.Unlock()
	if last {
		ls.SetLogger(nil)
	}
}
