package main

import (
	"github.com/jward/boxify"
	"github.com/jward/boxify/internal/catalog"
)

// CLIResult is the top-level JSON envelope for every command.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIExplanation describes how one script was resolved.
type CLIExplanation struct {
	Script    string        `json:"script"`
	Ranking   []string      `json:"ranking"`
	Decisions []CLIDecision `json:"decisions"`
	// Imports maps each package to the functions imported from it.
	Imports     map[string][]string `json:"imports"`
	Diagnostics []CLIDiagnostic     `json:"diagnostics"`
}

// CLIDecision is a JSON-friendly resolution decision.
type CLIDecision struct {
	Function   string   `json:"function"`
	Kind       string   `json:"kind"`
	Packages   []string `json:"packages"`
	Candidates []string `json:"candidates,omitempty"`
}

// CLIDiagnostic is a JSON-friendly diagnostic.
type CLIDiagnostic struct {
	Severity   string   `json:"severity"`
	Code       string   `json:"code"`
	Function   string   `json:"function"`
	Message    string   `json:"message"`
	Candidates []string `json:"candidates,omitempty"`
	Chosen     []string `json:"chosen,omitempty"`
}

// CLIOwners lists the catalog packages exporting a function.
type CLIOwners struct {
	Function string   `json:"function"`
	Packages []string `json:"packages"`
}

// CLIExports lists the functions a package exports.
type CLIExports struct {
	Package   string   `json:"package"`
	Functions []string `json:"functions"`
}

// CLISnapshot reports a catalog import.
type CLISnapshot struct {
	Source      string `json:"source"`
	Database    string `json:"database"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint"`
	Skipped     bool   `json:"skipped"`
}

// CLIConfig is the effective configuration and where it came from.
type CLIConfig struct {
	File   string `json:"file,omitempty"`
	Config any    `json:"config"`
}

func toCLIExplanation(out *boxify.Output) CLIExplanation {
	exp := CLIExplanation{
		Script:      out.Source,
		Ranking:     nonNil(out.Ranking),
		Decisions:   make([]CLIDecision, 0, len(out.Decisions)),
		Imports:     out.Imports.Map(),
		Diagnostics: make([]CLIDiagnostic, 0, out.Diagnostics.Len()),
	}
	for _, d := range out.Decisions {
		exp.Decisions = append(exp.Decisions, CLIDecision{
			Function:   d.Function,
			Kind:       string(d.Kind),
			Packages:   nonNil(d.Packages),
			Candidates: d.Candidates,
		})
	}
	for _, d := range out.Diagnostics.Items {
		exp.Diagnostics = append(exp.Diagnostics, CLIDiagnostic{
			Severity:   d.Severity.String(),
			Code:       d.Code,
			Function:   d.Function,
			Message:    d.Message,
			Candidates: d.Candidates,
			Chosen:     d.Chosen,
		})
	}
	return exp
}

func toCLISnapshot(location, dbPath string, res *catalog.ImportResult) CLISnapshot {
	return CLISnapshot{
		Source:      location,
		Database:    dbPath,
		Rows:        res.Rows,
		Fingerprint: res.Fingerprint,
		Skipped:     res.Skipped,
	}
}

// nonNil keeps empty lists as [] rather than null in JSON.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
