package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
)

// formatExplanationText prints the ranking, a decision table and any
// diagnostics.
func formatExplanationText(w io.Writer, exp CLIExplanation) {
	if exp.Script != "" {
		fmt.Fprintf(w, "Script: %s\n", exp.Script)
	}
	fmt.Fprintf(w, "Ranking: %s\n", strings.Join(exp.Ranking, ", "))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tKIND\tPACKAGES\tCANDIDATES")
	for _, d := range exp.Decisions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			d.Function, d.Kind, joinOrDash(d.Packages), joinOrDash(d.Candidates))
	}
	tw.Flush()

	if len(exp.Imports) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Imports:")
		for _, pkg := range slices.Sorted(maps.Keys(exp.Imports)) {
			fmt.Fprintf(w, "  %s: %s\n", pkg, strings.Join(exp.Imports[pkg], ", "))
		}
	}

	if len(exp.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Diagnostics:")
		for _, d := range exp.Diagnostics {
			fmt.Fprintf(w, "  %s %s: %s\n", d.Severity, d.Code, d.Message)
		}
	}
}

// formatOwnersText formats CLIOwners results as aligned columns.
func formatOwnersText(w io.Writer, owners []CLIOwners) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNCTION\tPACKAGES")
	for _, o := range owners {
		fmt.Fprintf(tw, "%s\t%s\n", o.Function, joinOrDash(o.Packages))
	}
	tw.Flush()
}

// formatExportsText prints one function per line.
func formatExportsText(w io.Writer, exports CLIExports) {
	for _, fn := range exports.Functions {
		fmt.Fprintln(w, fn)
	}
}

func formatSnapshotText(w io.Writer, s CLISnapshot) {
	if s.Skipped {
		fmt.Fprintf(w, "Snapshot %s already up to date (%d rows)\n", s.Database, s.Rows)
		return
	}
	fmt.Fprintf(w, "Imported %d rows from %s into %s\n", s.Rows, s.Source, s.Database)
	fmt.Fprintf(w, "Fingerprint: %s\n", s.Fingerprint)
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIExplanation:
		formatExplanationText(w, v)
	case []CLIOwners:
		formatOwnersText(w, v)
	case CLIExports:
		formatExportsText(w, v)
	case CLISnapshot:
		formatSnapshotText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// outputResult writes result in the selected format.
func (a *app) outputResult(result CLIResult) error {
	if a.flagFormat == "text" {
		return outputResultText(a.stdout, result)
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to stdout as a
// CLIResult envelope. In text mode it goes to stderr.
func (a *app) outputError(command string, err error) error {
	a.errorHandled = true
	if a.flagFormat == "text" {
		fmt.Fprintf(a.stderr, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ", ")
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid --format %q: must be one of %s", format, strings.Join(validFormats, ", "))
}
