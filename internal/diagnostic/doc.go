// Package diagnostic provides the advisory messages produced while resolving
// symbol ownership.
//
// Diagnostics never abort a rewrite. They are streamed to a [Reporter] as
// they are produced and also collected in [Diagnostics] for callers that
// embed the resolver as a library.
package diagnostic
