package diagnostic

import (
	"fmt"
	"strings"
)

// Severity is the level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic codes.
const (
	// CodeExplicitAmbiguous: a function was qualified with more than one
	// package; every one of them is imported.
	CodeExplicitAmbiguous = "explicit-ambiguous"
	// CodeRankedChoice: several catalog packages export a function and the
	// ranked preference list picked one.
	CodeRankedChoice = "ranked-choice"
	// CodeUnrankedChoice: several catalog packages export a function and none
	// of them is ranked; the lexicographically first one was picked.
	CodeUnrankedChoice = "unranked-choice"
)

// Diagnostic is a single advisory message.
type Diagnostic struct {
	Severity Severity
	// Code identifies the kind of ambiguity.
	Code string
	// Message is the human-readable description.
	Message string
	// Function is the function the diagnostic is about.
	Function string
	// Candidates are the packages that could own Function.
	Candidates []string
	// Chosen are the packages Function was imported from.
	Chosen []string
	// Source names the script being rewritten, when known.
	Source string
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}
	if d.Source != "" {
		return d.Source + ": " + msg
	}
	return msg
}

// Diagnostics holds every diagnostic from one resolution, in production order.
type Diagnostics struct {
	Items []Diagnostic
}

// Add appends a diagnostic.
func (d *Diagnostics) Add(diag Diagnostic) {
	d.Items = append(d.Items, diag)
}

// Warnings returns only warning diagnostics.
func (d *Diagnostics) Warnings() []Diagnostic {
	return d.filter(func(diag Diagnostic) bool { return diag.Severity == SeverityWarning })
}

// Len returns the number of diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.Items)
}

// ByCode returns the diagnostics with the given code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	return d.filter(func(diag Diagnostic) bool { return diag.Code == code })
}

func (d *Diagnostics) filter(keep func(Diagnostic) bool) []Diagnostic {
	var out []Diagnostic
	for _, diag := range d.Items {
		if keep(diag) {
			out = append(out, diag)
		}
	}
	return out
}

// String joins every diagnostic on its own line.
func (d *Diagnostics) String() string {
	parts := make([]string, len(d.Items))
	for i, diag := range d.Items {
		parts[i] = diag.String()
	}
	return strings.Join(parts, "\n")
}
