package pipeline

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// RunLog is the append-only per-dialog record of what a run submitted
// and produced. It survives across runs; each entry is timestamped.
type RunLog struct {
	mu   sync.Mutex
	file *os.File
}

// OpenRunLog opens or creates the run log at path in append mode.
func OpenRunLog(path string) (*RunLog, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	return &RunLog{file: file}, nil
}

// Printf appends one timestamped entry.
func (l *RunLog) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.file, "%s %s\n", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
}

// Close flushes and closes the log file.
func (l *RunLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
