package rewrite

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jward/boxify/internal/extract"
	"github.com/jward/boxify/internal/resolve"
)

// DefaultEnabler is the first preamble line; it makes use() available.
const DefaultEnabler = "box::use(box[use])"

// directivePrefix marks an interpreter directive on the first line.
const directivePrefix = "#!"

// Rewriter produces rewritten script text. It is safe for concurrent use.
type Rewriter struct{}

// New creates a Rewriter.
func New() *Rewriter {
	return &Rewriter{}
}

// Rewrite returns src with the preamble for imports and with every
// qualification, existing declaration line and known load directive
// removed. isCatalogPackage decides which loads are removed; nil removes
// them all. Everything else passes through byte for byte.
func (r *Rewriter) Rewrite(src string, facts *extract.Facts, imports *resolve.ImportMap, isCatalogPackage func(string) bool) string {
	body := apply(src, Edits(facts, isCatalogPackage))

	var lines []string
	if strings.HasPrefix(body, directivePrefix) {
		directive, rest, _ := strings.Cut(body, "\n")
		lines = append(lines, directive)
		body = rest
	}
	lines = append(lines, r.Preamble(imports)...)
	return strings.Join(lines, "\n") + "\n" + body
}

// Preamble renders the enabler followed by one use() line per package,
// packages and functions sorted.
func (r *Rewriter) Preamble(imports *resolve.ImportMap) []string {
	lines := []string{DefaultEnabler}
	if imports == nil {
		return lines
	}
	for _, pkg := range imports.Packages() {
		var names []string
		for _, fn := range imports.Functions(pkg) {
			if resolve.IsEnabler(pkg, fn) {
				continue
			}
			names = append(names, Quote(fn))
		}
		if len(names) == 0 {
			continue
		}
		lines = append(lines, "use("+Quote(pkg)+"["+strings.Join(names, ", ")+"])")
	}
	return lines
}

// Edit deletes src[Start:End].
type Edit struct {
	Start int
	End   int
}

// Edits returns the deletions for facts in source order. Overlapping spans
// are dropped, keeping the earliest.
func Edits(facts *extract.Facts, isCatalogPackage func(string) bool) []Edit {
	var edits []Edit
	for _, site := range facts.Explicit {
		edits = append(edits, Edit{Start: site.QualifierStart, End: site.QualifierEnd})
	}
	for _, load := range facts.Loads {
		if isCatalogPackage == nil || isCatalogPackage(load.Package) {
			edits = append(edits, Edit{Start: load.Start, End: load.End})
		}
	}
	for _, decl := range facts.Declarations {
		edits = append(edits, Edit{Start: decl.Start, End: decl.End})
	}
	slices.SortFunc(edits, func(a, b Edit) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	out := edits[:0]
	end := 0
	for _, e := range edits {
		if e.Start < end || e.End <= e.Start {
			continue
		}
		out = append(out, e)
		end = e.End
	}
	return out
}

func apply(src string, edits []Edit) string {
	var b strings.Builder
	b.Grow(len(src))
	pos := 0
	for _, e := range edits {
		if e.Start < pos || e.End > len(src) {
			continue
		}
		b.WriteString(src[pos:e.Start])
		pos = e.End
	}
	b.WriteString(src[pos:])
	return b.String()
}
