package catalog

import (
	"sort"

	"github.com/jward/boxify/internal/store"
)

// Export is one (package, function) pair of a listing.
type Export = store.Export

// Catalog maps packages to exported functions and functions to the packages
// exporting them. The zero value is an empty catalog.
type Catalog struct {
	exports map[string]map[string]bool
	owners  map[string][]string
	size    int
}

// New builds a Catalog from rows. Exact duplicate rows are absorbed; rows
// with an empty package or function are ignored.
func New(rows []Export) *Catalog {
	c := &Catalog{
		exports: make(map[string]map[string]bool),
		owners:  make(map[string][]string),
	}
	for _, row := range rows {
		if row.Package == "" || row.Function == "" {
			continue
		}
		fns, ok := c.exports[row.Package]
		if !ok {
			fns = make(map[string]bool)
			c.exports[row.Package] = fns
		}
		if fns[row.Function] {
			continue
		}
		fns[row.Function] = true
		c.owners[row.Function] = append(c.owners[row.Function], row.Package)
		c.size++
	}
	for _, pkgs := range c.owners {
		sort.Strings(pkgs)
	}
	return c
}

// FromMap builds a Catalog from a package -> functions mapping.
func FromMap(m map[string][]string) *Catalog {
	var rows []Export
	for pkg, fns := range m {
		for _, fn := range fns {
			rows = append(rows, Export{Package: pkg, Function: fn})
		}
	}
	return New(rows)
}

// Owners returns the packages exporting fn, sorted lexicographically.
// The returned slice is a copy.
func (c *Catalog) Owners(fn string) []string {
	if c == nil {
		return nil
	}
	pkgs := c.owners[fn]
	if len(pkgs) == 0 {
		return nil
	}
	return append([]string(nil), pkgs...)
}

// Exports returns the functions exported by pkg, sorted lexicographically.
func (c *Catalog) Exports(pkg string) []string {
	if c == nil {
		return nil
	}
	fns := make([]string, 0, len(c.exports[pkg]))
	for fn := range c.exports[pkg] {
		fns = append(fns, fn)
	}
	sort.Strings(fns)
	return fns
}

// Exported reports whether pkg exports fn.
func (c *Catalog) Exported(pkg, fn string) bool {
	if c == nil {
		return false
	}
	return c.exports[pkg][fn]
}

// HasPackage reports whether pkg is a key of the catalog.
func (c *Catalog) HasPackage(pkg string) bool {
	if c == nil {
		return false
	}
	_, ok := c.exports[pkg]
	return ok
}

// Packages returns every package name, sorted.
func (c *Catalog) Packages() []string {
	if c == nil {
		return nil
	}
	pkgs := make([]string, 0, len(c.exports))
	for pkg := range c.exports {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}

// Len returns the number of distinct (package, function) pairs.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return c.size
}

// Rows returns every distinct pair ordered by package, then function.
func (c *Catalog) Rows() []Export {
	rows := make([]Export, 0, c.Len())
	for _, pkg := range c.Packages() {
		for _, fn := range c.Exports(pkg) {
			rows = append(rows, Export{Package: pkg, Function: fn})
		}
	}
	return rows
}

// Fingerprint returns a content hash that is independent of row order.
func (c *Catalog) Fingerprint() string {
	return store.ComputeFingerprint(c.Rows())
}
