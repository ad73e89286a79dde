package diagnostic

import (
	"strings"

	"github.com/charmbracelet/log"
)

// Reporter receives diagnostics as they are produced. Implementations used
// with parallel rewrites must be safe for concurrent use.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// LogReporter writes diagnostics to a charmbracelet logger: info diagnostics
// at info level, warnings at warn level.
type LogReporter struct {
	Logger *log.Logger
}

// NewLogReporter returns a Reporter backed by logger.
func NewLogReporter(logger *log.Logger) *LogReporter {
	return &LogReporter{Logger: logger}
}

// Report logs d with its structured fields.
func (r *LogReporter) Report(d Diagnostic) {
	keyvals := []any{"code", d.Code, "function", d.Function}
	if len(d.Candidates) > 0 {
		keyvals = append(keyvals, "candidates", strings.Join(d.Candidates, ","))
	}
	if len(d.Chosen) > 0 {
		keyvals = append(keyvals, "chosen", strings.Join(d.Chosen, ","))
	}
	if d.Source != "" {
		keyvals = append(keyvals, "source", d.Source)
	}
	switch d.Severity {
	case SeverityWarning:
		r.Logger.Warn(d.Message, keyvals...)
	default:
		r.Logger.Info(d.Message, keyvals...)
	}
}
