// Package diagnostics accumulates errors and trace output over the
// lifetime of a single driver run, mirroring the teacher's
// common.LogWriter: callers push into it as each pipeline stage runs
// and it is flushed once at the very end.
package diagnostics

import (
	"fmt"
	"io"
)

// Log buffers errors and trace lines. It is not safe for concurrent
// use — the driver owns one per run and every stage writes into it
// sequentially.
type Log struct {
	errs   []error
	traces []string
}

// Err records a pipeline error. A nil err is ignored so callers can
// pass a stage's return value directly.
func (l *Log) Err(err error) {
	if err == nil {
		return
	}
	l.errs = append(l.errs, err)
}

// Trace records an informational line, printed after any errors on
// Flush.
func (l *Log) Trace(format string, args ...any) {
	l.traces = append(l.traces, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any error has been recorded.
func (l *Log) HasErrors() bool { return len(l.errs) > 0 }

// Errors returns every recorded error, in the order they were pushed.
func (l *Log) Errors() []error { return l.errs }

// Flush writes every recorded error and trace line to w, errors
// first.
func (l *Log) Flush(w io.Writer) {
	for _, e := range l.errs {
		fmt.Fprintln(w, e.Error())
	}
	for _, t := range l.traces {
		fmt.Fprintln(w, t)
	}
}
