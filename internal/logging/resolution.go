package logging

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxFragments = 32

const (
	OpResolve  = "resolve"
	OpRelative = "relative"
	OpTempFile = "tempfile"
)

// Resolution is written as a single JSON object per operation.
type Resolution struct {
	Timestamp  time.Time `json:"ts"`
	RequestID  string    `json:"request_id"`
	ClientIP   string    `json:"client_ip"`
	Operation  string    `json:"operation"`
	Fragments  []string  `json:"fragments"`
	Result     string    `json:"result"`
	Kind       string    `json:"kind"`
	Error      string    `json:"error,omitempty"`
	StatusCode int       `json:"status_code"`
	DurationMS int64     `json:"duration_ms"`
}

type ResolutionLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func NewResolutionLogger(w io.Writer) *ResolutionLogger {
	return &ResolutionLogger{w: w}
}

func OpenResolutionLog(path string) (*ResolutionLogger, func() error, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return NewResolutionLogger(file), file.Close, nil
}

func (l *ResolutionLogger) Write(resolution Resolution) error {
	if l == nil {
		return nil
	}
	resolution.Fragments = truncateFragments(resolution.Fragments)

	data, err := json.Marshal(resolution)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.w.Write(append(data, '\n'))
	return err
}

func truncateFragments(fragments []string) []string {
	if len(fragments) <= maxFragments {
		return fragments
	}
	out := make([]string, maxFragments)
	copy(out, fragments)
	return out
}
