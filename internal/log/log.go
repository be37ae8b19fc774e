package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apex/log"
)

// Fields is passed to WithFields.
type Fields = log.Fields

// minLevel is checked by Handler so the level can change while other
// goroutines log. The apex logger itself stays at debug.
var minLevel atomic.Int32

// Init installs the stderr handler and sets the level. Stdout stays free for
// the MCP stdio transport. Call it before logging starts; use SetLevel after.
func Init(out io.Writer, level string) {
	if out == nil {
		out = os.Stderr
	}
	SetLevel(level)
	log.SetHandler(&Handler{out: out})
	log.SetLevel(log.DebugLevel)
}

// SetLevel changes the level without replacing the handler.
func SetLevel(level string) {
	minLevel.Store(int32(ParseLevel(level)))
}

// ParseLevel maps a config value to an apex level. Unknown values mean info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Handler writes one line per entry: timestamp, level letter, message, then
// sorted key=value fields.
type Handler struct {
	mu  sync.Mutex
	out io.Writer
}

// HandleLog implements the log.Handler interface
func (h *Handler) HandleLog(e *log.Entry) error {
	if e.Level < log.Level(minLevel.Load()) {
		return nil
	}
	level := "?"
	switch e.Level {
	case log.DebugLevel:
		level = "D"
	case log.InfoLevel:
		level = "I"
	case log.WarnLevel:
		level = "W"
	case log.ErrorLevel:
		level = "E"
	case log.FatalLevel:
		level = "F"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s", time.Now().Format("2006-01-02 15:04:05"), level, e.Message)
	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%v", name, e.Fields.Get(name))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

// Debugf logs at Debug level.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Infof logs at Info level.
func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf logs at Warn level.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Errorf logs at Error level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// WithFields returns an entry carrying fields.
func WithFields(fields Fields) *log.Entry {
	return log.WithFields(fields)
}

// WithError returns an entry with error.
func WithError(err error) *log.Entry {
	return log.WithError(err)
}
