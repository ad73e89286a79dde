// Package extract pulls the facts the resolver needs out of raw R script
// text: call sites, explicitly qualified call sites, library load
// directives, existing box import declarations and the non-standard infix
// operators in use.
//
// Scanning is token based (github.com/viant/parsly) rather than a syntax
// tree. Comments and string literals never produce facts. Call-site
// detection is exposed as a lazy, restartable sequence ([CallSites]) so a
// fuller tokenizer can replace it without touching the resolver.
package extract
