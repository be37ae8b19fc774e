package audit

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

var jsonMarshal = json.Marshal

// Event is one tool call, written as a single JSON line.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Tool       string    `json:"tool"`
	Toolset    string    `json:"toolset"`
	Region     string    `json:"region,omitempty"`
	Resources  []string  `json:"resources,omitempty"`
	Outcome    string    `json:"outcome"`
	ErrorCode  string    `json:"errorCode,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"durationMs"`
}

type Logger struct {
	out io.Writer
	mu  sync.Mutex
}

func NewLogger(out io.Writer) *Logger {
	if out == nil {
		out = io.Discard
	}
	return &Logger{out: out}
}

func (l *Logger) Log(event Event) {
	if l == nil {
		return
	}
	data, err := jsonMarshal(event)
	if err != nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(data, '\n'))
}
