package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jward/boxify/internal/catalog"
	"github.com/jward/boxify/internal/diagnostic"
	"github.com/jward/boxify/internal/extract"
)

// The box import mechanism itself. Declarations of it are never resolved or
// rendered as imports; the rewriter emits its own enabler line.
const (
	EnablerPackage  = "box"
	EnablerFunction = "use"
)

// IsEnabler reports whether pkg/fn names the import mechanism.
func IsEnabler(pkg, fn string) bool {
	return pkg == EnablerPackage && fn == EnablerFunction
}

// Config holds resolution settings that outlive a single script.
type Config struct {
	// FallbackTail is appended to a script's load order to form the ranked
	// preference list.
	FallbackTail []string
}

// DefaultFallbackTail returns the packages ranked after every script load.
func DefaultFallbackTail() []string {
	return []string{"base", "dplyr", "magrittr", "tidyr"}
}

// DefaultConfig returns a Config with the default fallback tail.
func DefaultConfig() Config {
	return Config{FallbackTail: DefaultFallbackTail()}
}

// Kind says how a function's owner was decided.
type Kind string

const (
	KindExplicit   Kind = "explicit"
	KindUnique     Kind = "unique"
	KindRanked     Kind = "ranked"
	KindUnranked   Kind = "unranked"
	KindUnresolved Kind = "unresolved"
	KindOperator   Kind = "operator"
)

// Decision records the outcome for one function.
type Decision struct {
	Function string
	// Packages the function is imported from; empty when unresolved.
	Packages []string
	// Candidates are the catalog owners, or the explicit qualifiers for
	// KindExplicit.
	Candidates []string
	Kind       Kind
}

// Result is the output of one resolution.
type Result struct {
	Imports     *ImportMap
	Decisions   []Decision
	Diagnostics diagnostic.Diagnostics
	// Ranking is the ranked preference list that was used.
	Ranking []string
}

// Decision returns the decision for fn.
func (r *Result) Decision(fn string) (Decision, bool) {
	for _, d := range r.Decisions {
		if d.Function == fn {
			return d, true
		}
	}
	return Decision{}, false
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReporter streams diagnostics to rep as they are produced.
func WithReporter(rep diagnostic.Reporter) Option {
	return func(r *Resolver) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithSource names the script in every diagnostic.
func WithSource(name string) Option {
	return func(r *Resolver) {
		r.source = name
	}
}

// Resolver decides function owners against one catalog. It holds no
// per-script state and is safe for concurrent use.
type Resolver struct {
	catalog  *catalog.Catalog
	config   Config
	reporter diagnostic.Reporter
	source   string
}

// NewResolver creates a Resolver over cat.
func NewResolver(cat *catalog.Catalog, cfg Config, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:  cat,
		config:   cfg,
		reporter: diagnostic.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ranking returns the ranked preference list for facts: its load order
// followed by the fallback tail, each package at its first position only.
func (r *Resolver) Ranking(facts *extract.Facts) []string {
	var ranking []string
	for _, list := range [][]string{facts.LoadOrder, r.config.FallbackTail} {
		for _, pkg := range list {
			if !slices.Contains(ranking, pkg) {
				ranking = append(ranking, pkg)
			}
		}
	}
	return ranking
}

// Resolve builds the import map for one script.
func (r *Resolver) Resolve(facts *extract.Facts) *Result {
	res := &Result{
		Imports: NewImportMap(),
		Ranking: r.Ranking(facts),
	}

	explicit, order := explicitIndex(facts)
	for _, fn := range order {
		pkgs := explicit[fn]
		for _, pkg := range pkgs {
			res.Imports.Add(pkg, fn)
		}
		res.Decisions = append(res.Decisions, Decision{
			Function:   fn,
			Packages:   slices.Sorted(slices.Values(pkgs)),
			Candidates: slices.Clone(pkgs),
			Kind:       KindExplicit,
		})
		if len(pkgs) > 1 {
			r.report(res, diagnostic.Diagnostic{
				Severity:   diagnostic.SeverityWarning,
				Code:       diagnostic.CodeExplicitAmbiguous,
				Message:    fmt.Sprintf("%s is qualified with %d packages (%s); importing from all of them", fn, len(pkgs), strings.Join(pkgs, ", ")),
				Function:   fn,
				Candidates: slices.Clone(pkgs),
				Chosen:     slices.Sorted(slices.Values(pkgs)),
			})
		}
	}

	for _, fn := range facts.Calls {
		if _, ok := explicit[fn]; ok {
			continue
		}
		d := r.decide(res, facts, fn)
		for _, pkg := range d.Packages {
			res.Imports.Add(pkg, fn)
		}
		res.Decisions = append(res.Decisions, d)
	}
	return res
}

func (r *Resolver) decide(res *Result, facts *extract.Facts, fn string) Decision {
	owners := r.catalog.Owners(fn)
	d := Decision{Function: fn, Candidates: owners}
	switch len(owners) {
	case 0:
		if pkg, ok := facts.OperatorPackage(fn); ok {
			d.Kind = KindOperator
			d.Packages = []string{pkg}
			return d
		}
		d.Kind = KindUnresolved
		return d
	case 1:
		d.Kind = KindUnique
		d.Packages = owners
		return d
	}

	for _, pkg := range res.Ranking {
		if slices.Contains(owners, pkg) {
			d.Kind = KindRanked
			d.Packages = []string{pkg}
			r.report(res, diagnostic.Diagnostic{
				Severity:   diagnostic.SeverityInfo,
				Code:       diagnostic.CodeRankedChoice,
				Message:    fmt.Sprintf("%s is exported by %s; using %s by load order", fn, strings.Join(owners, ", "), pkg),
				Function:   fn,
				Candidates: owners,
				Chosen:     []string{pkg},
			})
			return d
		}
	}

	// Owners are sorted, so the first is the lexicographic choice.
	d.Kind = KindUnranked
	d.Packages = []string{owners[0]}
	r.report(res, diagnostic.Diagnostic{
		Severity:   diagnostic.SeverityWarning,
		Code:       diagnostic.CodeUnrankedChoice,
		Message:    fmt.Sprintf("%s is exported by %s and none of them is loaded; picked %s alphabetically, qualify the call or load the package to choose", fn, strings.Join(owners, ", "), owners[0]),
		Function:   fn,
		Candidates: owners,
		Chosen:     []string{owners[0]},
	})
	return d
}

func (r *Resolver) report(res *Result, d diagnostic.Diagnostic) {
	d.Source = r.source
	res.Diagnostics.Add(d)
	r.reporter.Report(d)
}

// explicitIndex inverts explicit call sites and existing declarations into
// function -> packages, both in order of first appearance.
func explicitIndex(facts *extract.Facts) (map[string][]string, []string) {
	type pair struct {
		pkg, fn string
		offset  int
	}
	var pairs []pair
	for _, site := range facts.Explicit {
		pairs = append(pairs, pair{site.Package, site.Name, site.Offset})
	}
	for _, decl := range facts.Declarations {
		for _, fn := range decl.Functions {
			if IsEnabler(decl.Package, fn) {
				continue
			}
			pairs = append(pairs, pair{decl.Package, fn, decl.Start})
		}
	}
	slices.SortStableFunc(pairs, func(a, b pair) int {
		return a.offset - b.offset
	})

	index := make(map[string][]string)
	var order []string
	for _, p := range pairs {
		pkgs, ok := index[p.fn]
		if !ok {
			order = append(order, p.fn)
		}
		if !slices.Contains(pkgs, p.pkg) {
			index[p.fn] = append(pkgs, p.pkg)
		}
	}
	return index, order
}
