// Package resolve decides, for every function a script calls, the single
// package it is imported from.
//
// Explicit qualifications win outright. Otherwise a function exported by one
// catalog package is imported from it; a function exported by several is
// imported from the first of them in the ranked preference list (load order
// followed by a fixed fallback tail), or from the lexicographically first
// candidate when none is ranked. Ambiguities are reported as diagnostics and
// never fail resolution.
package resolve
