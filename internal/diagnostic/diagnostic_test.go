package diagnostic

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Code: CodeRankedChoice, Message: "filter found in dplyr, stats"}
	assert.Equal(t, "[ranked-choice] filter found in dplyr, stats", d.String())

	d.Source = "analysis.R"
	assert.Equal(t, "analysis.R: [ranked-choice] filter found in dplyr, stats", d.String())
}

func TestSeverity_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "unknown", Severity(42).String())
}

func TestDiagnostics_Filters(t *testing.T) {
	t.Parallel()
	var d Diagnostics
	d.Add(Diagnostic{Severity: SeverityInfo, Code: CodeRankedChoice})
	d.Add(Diagnostic{Severity: SeverityWarning, Code: CodeUnrankedChoice})
	d.Add(Diagnostic{Severity: SeverityWarning, Code: CodeExplicitAmbiguous})

	assert.Equal(t, 3, d.Len())
	assert.Len(t, d.Warnings(), 2)
	require.Len(t, d.ByCode(CodeUnrankedChoice), 1)
	assert.Empty(t, d.ByCode("nope"))
}

func TestLogReporter_Levels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	r := NewLogReporter(logger)

	r.Report(Diagnostic{Severity: SeverityInfo, Code: CodeRankedChoice, Message: "ranked", Function: "filter"})
	r.Report(Diagnostic{
		Severity:   SeverityWarning,
		Code:       CodeUnrankedChoice,
		Message:    "unranked",
		Function:   "show",
		Candidates: []string{"methods", "shiny"},
		Chosen:     []string{"methods"},
	})

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "ranked")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "methods,shiny")
}

func TestLogReporter_QuietLevelSuppresses(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.ErrorLevel})

	NewLogReporter(logger).Report(Diagnostic{Severity: SeverityWarning, Message: "hidden"})
	assert.Empty(t, buf.String())
}

func TestReporterFunc(t *testing.T) {
	t.Parallel()
	var got []string
	r := ReporterFunc(func(d Diagnostic) { got = append(got, d.Code) })
	r.Report(Diagnostic{Code: "a"})
	Discard.Report(Diagnostic{Code: "b"})
	assert.Equal(t, []string{"a"}, got)
}
