package extract

import (
	"iter"
	"slices"
	"strings"
)

// Load is a load directive such as library(dplyr). Start and End span the
// directive text only.
type Load struct {
	Package string
	Start   int
	End     int
	Line    int
}

// Facts is everything the resolver and rewriter need to know about a script.
type Facts struct {
	// Calls lists distinct called function names in order of first
	// appearance; synthetic operator calls come last.
	Calls []string
	// Sites holds every non-load call site in source order.
	Sites []CallSite
	// Explicit holds the qualified call sites (pkg::fn(...)).
	Explicit []CallSite
	// Declarations holds clauses parsed from existing box import lines.
	Declarations []Declaration
	// Loads holds load directives in source order.
	Loads []Load
	// Operators holds the operators whose token appears in the script.
	Operators []Operator
	// LoadOrder lists operator packages, then loaded packages, de-duplicated.
	LoadOrder []string
}

// Called reports whether fn is among the distinct calls.
func (f *Facts) Called(fn string) bool {
	return slices.Contains(f.Calls, fn)
}

// OperatorPackage returns the package owning operator token tok when the
// operator is active in the script.
func (f *Facts) OperatorPackage(tok string) (string, bool) {
	for _, op := range f.Operators {
		if op.Token == tok {
			return op.Package, true
		}
	}
	return "", false
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithOperators replaces the non-standard operator table.
func WithOperators(ops ...Operator) Option {
	return func(e *Extractor) {
		e.operators = slices.Clone(ops)
	}
}

// WithCallSites replaces the call-site scanner. Sites must be yielded in
// source order with Open set.
func WithCallSites(scan func(src string) iter.Seq[CallSite]) Option {
	return func(e *Extractor) {
		e.callSites = scan
	}
}

// WithLoadFunctions replaces the functions recognized as load directives.
func WithLoadFunctions(names ...string) Option {
	return func(e *Extractor) {
		e.loadFuncs = make(map[string]bool, len(names))
		for _, n := range names {
			e.loadFuncs[n] = true
		}
	}
}

// Extractor turns script text into Facts. It holds no per-script state and
// is safe for concurrent use.
type Extractor struct {
	operators []Operator
	loadFuncs map[string]bool
	callSites func(src string) iter.Seq[CallSite]
}

// New creates an Extractor with the default operator table and load
// functions.
func New(opts ...Option) *Extractor {
	e := &Extractor{callSites: CallSites}
	WithOperators(DefaultOperators()...)(e)
	WithLoadFunctions(DefaultLoadFunctions()...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Operators returns a copy of the operator table.
func (e *Extractor) Operators() []Operator {
	return slices.Clone(e.operators)
}

// Extract scans src. It never fails: text it cannot understand simply
// yields no facts.
func (e *Extractor) Extract(src string) *Facts {
	f := &Facts{Declarations: declarations(src)}

	seen := make(map[string]bool)
	decl := 0
	for site := range e.callSites(src) {
		for decl < len(f.Declarations) && f.Declarations[decl].End <= site.Offset {
			decl++
		}
		if decl < len(f.Declarations) && f.Declarations[decl].Start <= site.Offset {
			continue
		}

		if load, ok := e.loadAt(src, site); ok {
			f.Loads = append(f.Loads, load)
			continue
		}
		f.Sites = append(f.Sites, site)
		if site.Qualified() {
			f.Explicit = append(f.Explicit, site)
		}
		if !seen[site.Name] {
			seen[site.Name] = true
			f.Calls = append(f.Calls, site.Name)
		}
	}

	var order []string
	for _, op := range e.operators {
		if op.Token == "" || !strings.Contains(src, op.Token) {
			continue
		}
		f.Operators = append(f.Operators, op)
		order = appendUnique(order, op.Package)
		if !seen[op.Token] {
			seen[op.Token] = true
			f.Calls = append(f.Calls, op.Token)
		}
	}
	for _, l := range f.Loads {
		order = appendUnique(order, l.Package)
	}
	f.LoadOrder = order
	return f
}

// loadAt recognizes fn(pkg) and fn("pkg") for an unqualified load function.
// Any other argument shape is an ordinary call.
func (e *Extractor) loadAt(src string, site CallSite) (Load, bool) {
	if site.Qualified() || !e.loadFuncs[site.Name] {
		return Load{}, false
	}
	args := significantAfter(src, site.Open+1, 2)
	if len(args) != 2 || args[1].Code != closeParenToken {
		return Load{}, false
	}
	var pkg string
	switch args[0].Code {
	case nameToken:
		pkg = args[0].Text(src)
	case stringToken:
		pkg = unquoteString(args[0].Text(src))
	default:
		return Load{}, false
	}
	if pkg == "" || !startsName(pkg) {
		return Load{}, false
	}
	return Load{Package: pkg, Start: site.Offset, End: args[1].End, Line: site.Line}, true
}

// significantAfter lexes src from offset from and returns up to n
// significant lexemes, positioned in src.
func significantAfter(src string, from, n int) []Lexeme {
	var out []Lexeme
	if from > len(src) {
		return out
	}
	for lx := range Lex(src[from:]) {
		if !lx.significant() {
			continue
		}
		lx.Start += from
		lx.End += from
		out = append(out, lx)
		if len(out) == n {
			break
		}
	}
	return out
}

func unquoteString(s string) string {
	if len(s) < 2 || s[0] != s[len(s)-1] || (s[0] != '"' && s[0] != '\'') {
		return ""
	}
	return s[1 : len(s)-1]
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
