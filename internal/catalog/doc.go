// Package catalog holds the Symbol Catalog: the immutable mapping from R
// package names to the function names they export.
//
// A Catalog is built once per run, either from a CSV listing with a
// "package,function" header row or from a SQLite snapshot written by
// "boxify catalog import", and is never mutated afterward. One function may be
// exported by several packages; [Catalog.Owners] returns all of them in
// lexicographic order.
package catalog
