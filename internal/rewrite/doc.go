// Package rewrite turns a script and its resolved imports into the final
// text: qualifications, load directives and any previous import preamble are
// cut from the body, and a fresh preamble is placed after the interpreter
// directive, if there is one.
package rewrite
