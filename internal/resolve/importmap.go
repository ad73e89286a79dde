package resolve

import (
	"maps"
	"slices"
)

// ImportMap maps each package to the set of functions imported from it. A
// package never maps to an empty set.
type ImportMap struct {
	m map[string]map[string]struct{}
}

// NewImportMap creates an empty ImportMap.
func NewImportMap() *ImportMap {
	return &ImportMap{m: make(map[string]map[string]struct{})}
}

// Add imports fn from pkg. It reports whether the pair was new.
func (im *ImportMap) Add(pkg, fn string) bool {
	if pkg == "" || fn == "" {
		return false
	}
	fns, ok := im.m[pkg]
	if !ok {
		fns = make(map[string]struct{})
		im.m[pkg] = fns
	}
	if _, ok := fns[fn]; ok {
		return false
	}
	fns[fn] = struct{}{}
	return true
}

// Remove drops fn from pkg, and pkg itself once it has no functions left.
// It reports whether the pair was present.
func (im *ImportMap) Remove(pkg, fn string) bool {
	fns, ok := im.m[pkg]
	if !ok {
		return false
	}
	if _, ok := fns[fn]; !ok {
		return false
	}
	delete(fns, fn)
	if len(fns) == 0 {
		delete(im.m, pkg)
	}
	return true
}

// Has reports whether fn is imported from pkg.
func (im *ImportMap) Has(pkg, fn string) bool {
	_, ok := im.m[pkg][fn]
	return ok
}

// Packages returns the imported packages, sorted.
func (im *ImportMap) Packages() []string {
	return slices.Sorted(maps.Keys(im.m))
}

// Functions returns the functions imported from pkg, sorted.
func (im *ImportMap) Functions(pkg string) []string {
	return slices.Sorted(maps.Keys(im.m[pkg]))
}

// PackagesOf returns the packages fn is imported from, sorted.
func (im *ImportMap) PackagesOf(fn string) []string {
	var out []string
	for pkg, fns := range im.m {
		if _, ok := fns[fn]; ok {
			out = append(out, pkg)
		}
	}
	slices.Sort(out)
	return out
}

// Len returns the number of (package, function) pairs.
func (im *ImportMap) Len() int {
	n := 0
	for _, fns := range im.m {
		n += len(fns)
	}
	return n
}

// Map returns the imports as package -> sorted functions.
func (im *ImportMap) Map() map[string][]string {
	out := make(map[string][]string, len(im.m))
	for pkg := range im.m {
		out[pkg] = im.Functions(pkg)
	}
	return out
}
