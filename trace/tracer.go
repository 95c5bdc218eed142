package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Tracer provides compilation tracing for debugging. A nil *Tracer is valid
// and traces nothing.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// New creates a tracer. Filters are filepath.Match patterns over phase
// names; none means every phase is traced.
func New(enabled bool, filters []string, writer io.Writer) *Tracer {
	if writer == nil {
		writer = os.Stderr
	}
	return &Tracer{
		enabled: enabled,
		filters: filters,
		writer:  writer,
	}
}

// IsEnabled returns whether tracing is enabled
func (t *Tracer) IsEnabled() bool {
	return t != nil && t.enabled
}

// matchesFilter checks if a phase name matches any of the filter patterns
func (t *Tracer) matchesFilter(phase string) bool {
	if len(t.filters) == 0 {
		return true // No filters = trace everything
	}

	for _, pattern := range t.filters {
		if matched, _ := filepath.Match(pattern, phase); matched {
			return true
		}
	}
	return false
}

// Phase logs the completion of a pipeline phase
func (t *Tracer) Phase(phase string, format string, args ...interface{}) {
	if !t.IsEnabled() || !t.matchesFilter(phase) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "[TRACE] PHASE %s %s\n", phase, fmt.Sprintf(format, args...))
}

// Failure logs the error that aborted a phase
func (t *Tracer) Failure(phase string, err error) {
	if !t.IsEnabled() || !t.matchesFilter(phase) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.writer, "[TRACE] FAIL %s %v\n", phase, err)
}
