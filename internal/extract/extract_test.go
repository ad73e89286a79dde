package extract

import (
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Lexing
// =============================================================================

func TestLex_CoversInput(t *testing.T) {
	t.Parallel()

	src := "x <- dplyr::filter(df, a == \"b(\") # c(\n`%>%`(y, f)\n"
	var rebuilt string
	for lx := range Lex(src) {
		rebuilt += lx.Text(src)
	}
	assert.Equal(t, src, rebuilt)
}

func TestLex_Restartable(t *testing.T) {
	t.Parallel()

	src := "f(g(1))"
	first := slices.Collect(Lex(src))
	second := slices.Collect(Lex(src))
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

// =============================================================================
// Call sites
// =============================================================================

func TestCallSites(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"bare", "mutate(df)", []string{"mutate"}},
		{"nested", "print(summary(lm(y ~ x)))", []string{"print", "summary", "lm"}},
		{"qualified", "dplyr::filter(df)", []string{"dplyr::filter"}},
		{"dotted name", "read.csv(path)", []string{"read.csv"}},
		{"backtick", "`my fn`(1)", []string{"my fn"}},
		{"space before paren", "mutate (df)", nil},
		{"reserved words", "if (x) for (i in y) while (z) function(a) a", nil},
		{"comment", "# mutate(df)\n", nil},
		{"string", `x <- "mutate(df)"`, nil},
		{"single quoted", `x <- 'mutate(df)'`, nil},
		{"internal access", "pkg:::hidden(x)", nil},
		{"member call", "obj$method(1); s4@slot(2)", nil},
		{"number", "1(2)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for site := range CallSites(tt.src) {
				if site.Qualified() {
					got = append(got, site.Package+"::"+site.Name)
				} else {
					got = append(got, site.Name)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCallSites_Positions(t *testing.T) {
	t.Parallel()

	src := "x <- 1\ny <- dplyr::filter(df)\n"
	sites := slices.Collect(CallSites(src))
	require.Len(t, sites, 1)

	site := sites[0]
	assert.Equal(t, 2, site.Line)
	assert.Equal(t, "dplyr::", src[site.QualifierStart:site.QualifierEnd])
	assert.Equal(t, site.QualifierStart, site.Offset)
	assert.Equal(t, byte('('), src[site.Open])
}

func TestCallSites_StopsEarly(t *testing.T) {
	t.Parallel()

	var got []string
	for site := range CallSites("a(); b(); c()") {
		got = append(got, site.Name)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

// =============================================================================
// Extract
// =============================================================================

func TestExtract_CallsAreDistinctInOrder(t *testing.T) {
	t.Parallel()

	f := New().Extract("mutate(df)\nfilter(df)\nmutate(df2)\n")
	assert.Equal(t, []string{"mutate", "filter"}, f.Calls)
	assert.Len(t, f.Sites, 3)
	assert.True(t, f.Called("filter"))
	assert.False(t, f.Called("select"))
}

func TestExtract_Explicit(t *testing.T) {
	t.Parallel()

	f := New().Extract("x <- dplyr::filter(df)\nstats::filter(y)\n")
	require.Len(t, f.Explicit, 2)
	assert.Equal(t, "dplyr", f.Explicit[0].Package)
	assert.Equal(t, "stats", f.Explicit[1].Package)
	assert.Equal(t, []string{"filter"}, f.Calls)
}

func TestExtract_Loads(t *testing.T) {
	t.Parallel()

	src := "library(dplyr)\nrequire(\"tidyr\")\nlibrary(dplyr)\nlibrary(pkg, character.only = TRUE)\n"
	f := New().Extract(src)

	require.Len(t, f.Loads, 3)
	assert.Equal(t, "dplyr", f.Loads[0].Package)
	assert.Equal(t, "library(dplyr)", src[f.Loads[0].Start:f.Loads[0].End])
	assert.Equal(t, "tidyr", f.Loads[1].Package)
	assert.Equal(t, 2, f.Loads[1].Line)
	assert.Equal(t, []string{"dplyr", "tidyr"}, f.LoadOrder)

	// The complex form is a plain call to library.
	assert.Equal(t, []string{"library"}, f.Calls)
}

func TestExtract_QualifiedLoadIsACall(t *testing.T) {
	t.Parallel()

	f := New().Extract("base::library(dplyr)\n")
	assert.Empty(t, f.Loads)
	require.Len(t, f.Explicit, 1)
	assert.Equal(t, "library", f.Explicit[0].Name)
}

func TestExtract_CustomLoadFunctions(t *testing.T) {
	t.Parallel()

	f := New(WithLoadFunctions("p_load")).Extract("p_load(dplyr)\nlibrary(tidyr)\n")
	require.Len(t, f.Loads, 1)
	assert.Equal(t, "dplyr", f.Loads[0].Package)
	assert.Equal(t, []string{"library"}, f.Calls)
}

// =============================================================================
// Operators
// =============================================================================

func TestExtract_OperatorActivation(t *testing.T) {
	t.Parallel()

	f := New().Extract("library(dplyr)\ndf %>% filter(x)\n")
	assert.Equal(t, []string{"magrittr", "dplyr"}, f.LoadOrder)
	assert.Equal(t, []string{"filter", "%>%"}, f.Calls)

	pkg, ok := f.OperatorPackage("%>%")
	assert.True(t, ok)
	assert.Equal(t, "magrittr", pkg)
}

func TestExtract_AbsentOperatorsNotSynthesized(t *testing.T) {
	t.Parallel()

	f := New().Extract("filter(x)\n")
	assert.Empty(t, f.Operators)
	assert.Empty(t, f.LoadOrder)
	assert.Equal(t, []string{"filter"}, f.Calls)
}

func TestExtract_OperatorPackageDeduplicated(t *testing.T) {
	t.Parallel()

	f := New().Extract("x %>% f()\ny %<>% g()\nlibrary(magrittr)\n")
	assert.Equal(t, []string{"magrittr"}, f.LoadOrder)
	assert.Equal(t, []string{"f", "g", "%>%", "%<>%"}, f.Calls)
}

func TestExtract_CustomOperators(t *testing.T) {
	t.Parallel()

	f := New(WithOperators(Operator{Token: "%||%", Package: "rlang"})).Extract("a %||% b %>% c\n")
	assert.Equal(t, []string{"rlang"}, f.LoadOrder)
	assert.Equal(t, []string{"%||%"}, f.Calls)
}

func TestExtract_OperatorOnlyScript(t *testing.T) {
	t.Parallel()

	f := New().Extract("%>%")
	assert.Equal(t, []string{"%>%"}, f.Calls)
	assert.Equal(t, []string{"magrittr"}, f.LoadOrder)
	assert.Empty(t, f.Sites)
}

// =============================================================================
// Declarations
// =============================================================================

func TestExtract_Declarations(t *testing.T) {
	t.Parallel()

	src := "box::use(box[use])\nuse(dplyr[filter, mutate])\nuse(magrittr[`%>%`])  # pipes\nfilter(df)\n"
	f := New().Extract(src)

	require.Len(t, f.Declarations, 3)
	assert.Equal(t, "box", f.Declarations[0].Package)
	assert.Equal(t, []string{"use"}, f.Declarations[0].Functions)
	assert.Equal(t, "dplyr", f.Declarations[1].Package)
	assert.Equal(t, []string{"filter", "mutate"}, f.Declarations[1].Functions)
	assert.Equal(t, "use(dplyr[filter, mutate])\n", src[f.Declarations[1].Start:f.Declarations[1].End])
	assert.Equal(t, []string{"%>%"}, f.Declarations[2].Functions)
	assert.Equal(t, 3, f.Declarations[2].Line)

	// Calls inside declaration lines are not call sites.
	assert.Equal(t, []string{"filter", "%>%"}, f.Calls)
}

func TestParseDeclaration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		ok   bool
		pkgs []string
	}{
		{"use(dplyr[filter])", true, []string{"dplyr"}},
		{"  box::use(dplyr[filter], tidyr[gather, spread])", true, []string{"dplyr", "tidyr"}},
		{"use( dplyr [ filter , mutate ] )", true, []string{"dplyr"}},
		{"use(dplyr)", false, nil},
		{"use(dplyr[])", false, nil},
		{"use(d = dplyr[filter])", false, nil},
		{"use(dplyr[filter]); x <- 1", false, nil},
		{"x <- use(dplyr[filter])", false, nil},
		{"reuse(dplyr[filter])", false, nil},
		{"use(df[1])", false, nil},
		{"use(df[1, 2])", false, nil},
		{"use(2[filter])", false, nil},
		{"use(df[.5])", false, nil},
		{"use(dplyr[`1`])", true, []string{"dplyr"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			clauses, _, ok := parseDeclaration(tt.line)
			assert.Equal(t, tt.ok, ok)
			var pkgs []string
			for _, c := range clauses {
				pkgs = append(pkgs, c.Package)
			}
			if tt.ok {
				assert.Equal(t, tt.pkgs, pkgs)
			}
		})
	}
}

func TestExtract_IndexingCallIsNotADeclaration(t *testing.T) {
	t.Parallel()

	f := New().Extract("use(df[1])\nx <- 2")
	assert.Empty(t, f.Declarations)
	assert.Equal(t, []string{"use"}, f.Calls)

	f = New().Extract("box::use(box[use])\nuse(df[1])\n")
	require.Len(t, f.Declarations, 1)
	assert.Equal(t, "box", f.Declarations[0].Package)
}

func TestExtract_BareUseNeedsBoxFirst(t *testing.T) {
	t.Parallel()

	f := New().Extract("use(dplyr[filter])\nbox::use(box[use])\nuse(stats[lag])\n")
	require.Len(t, f.Declarations, 2)
	assert.Equal(t, "box", f.Declarations[0].Package)
	assert.Equal(t, "stats", f.Declarations[1].Package)
	assert.Equal(t, []string{"use"}, f.Calls)
}

func TestExtract_DottedNamesAreWhole(t *testing.T) {
	t.Parallel()

	f := New().Extract("x <- read.csv(path)\ny <- df.filter(x)\n")
	assert.Equal(t, []string{"read.csv", "df.filter"}, f.Calls)
	assert.False(t, f.Called("filter"))
	assert.False(t, f.Called("csv"))
}

func TestExtract_CustomCallSites(t *testing.T) {
	t.Parallel()

	var scanned []string
	only := func(src string) iter.Seq[CallSite] {
		scanned = append(scanned, src)
		return func(yield func(CallSite) bool) {
			for site := range CallSites(src) {
				if site.Name == "library" || site.Name == "mutate" {
					if !yield(site) {
						return
					}
				}
			}
		}
	}

	src := "library(dplyr)\nfilter(x)\nmutate(y)\n"
	f := New(WithCallSites(only)).Extract(src)
	assert.Equal(t, []string{src}, scanned)
	assert.Equal(t, []string{"mutate"}, f.Calls)
	require.Len(t, f.Loads, 1)
	assert.Equal(t, "dplyr", f.Loads[0].Package)

	f = New(WithCallSites(func(string) iter.Seq[CallSite] {
		return func(func(CallSite) bool) {}
	})).Extract(src)
	assert.Empty(t, f.Calls)
	assert.Empty(t, f.Loads)
}

func TestExtract_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	src := "library(dplyr)\ndplyr::filter(df)\n"
	orig := src
	_ = New().Extract(src)
	assert.Equal(t, orig, src)
}
