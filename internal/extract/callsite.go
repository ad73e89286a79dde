package extract

import (
	"iter"
	"strings"
)

// CallSite is one function call observed in script text.
type CallSite struct {
	// Name is the called function, without backticks.
	Name string
	// Package is the explicit qualifier of pkg::fn(...), empty for bare calls.
	Package string
	// Offset is the byte offset where the call expression starts.
	Offset int
	// Line is the 1-based line of Offset.
	Line int
	// QualifierStart and QualifierEnd delimit "pkg::" when Package is set.
	QualifierStart int
	QualifierEnd   int
	// Open is the byte offset of the call's opening parenthesis.
	Open int
}

// Qualified reports whether the call named its package.
func (c CallSite) Qualified() bool {
	return c.Package != ""
}

// reserved holds R keywords and constants that look like calls ("if (",
// "function(") but are never imported.
var reserved = map[string]bool{
	"if": true, "else": true, "repeat": true, "while": true, "function": true,
	"for": true, "in": true, "next": true, "break": true,
	"TRUE": true, "FALSE": true, "NULL": true, "Inf": true, "NaN": true,
	"NA": true, "NA_integer_": true, "NA_real_": true, "NA_character_": true, "NA_complex_": true,
}

// IsReserved reports whether name is an R reserved word.
func IsReserved(name string) bool {
	return reserved[name]
}

// CallSites returns a lazy sequence of every call site in src: each name (or
// backtick name) immediately followed by "(". Nested calls each yield their
// own site. Member calls (x$f(), x@f()) and internal access (pkg:::f()) are
// not call sites. The sequence is finite and restartable.
func CallSites(src string) iter.Seq[CallSite] {
	return func(yield func(CallSite) bool) {
		var w window
		line := 1
		for lx := range Lex(src) {
			if lx.Code == openParenToken {
				if site, ok := callSiteAt(src, &w, lx, line); ok {
					if !yield(site) {
						return
					}
				}
			}
			line += strings.Count(src[lx.Start:lx.End], "\n")
			w.push(lx)
		}
	}
}

// window keeps the last three lexemes seen, most recent last.
type window struct {
	items [3]Lexeme
	n     int
}

func (w *window) push(l Lexeme) {
	w.items[0], w.items[1], w.items[2] = w.items[1], w.items[2], l
	if w.n < len(w.items) {
		w.n++
	}
}

// back returns the i-th most recent lexeme, 1-based.
func (w *window) back(i int) (Lexeme, bool) {
	if i < 1 || i > w.n {
		return Lexeme{}, false
	}
	return w.items[len(w.items)-i], true
}

// callSiteAt classifies the lexemes preceding the opening parenthesis open.
func callSiteAt(src string, w *window, open Lexeme, line int) (CallSite, bool) {
	fn, ok := w.back(1)
	if !ok {
		return CallSite{}, false
	}
	var fnName string
	switch fn.Code {
	case nameToken:
		fnName = fn.Text(src)
		if reserved[fnName] || !startsName(fnName) {
			return CallSite{}, false
		}
	case backtickToken:
		fnName = unquoteBacktick(fn.Text(src))
		if fnName == "" {
			return CallSite{}, false
		}
	default:
		return CallSite{}, false
	}

	site := CallSite{Name: fnName, Offset: fn.Start, Line: line, Open: open.Start}
	sep, ok := w.back(2)
	if !ok {
		return site, true
	}
	switch sep.Code {
	case tripleColonToken:
		return CallSite{}, false
	case doubleColonToken:
		pkg, ok := w.back(3)
		if !ok || pkg.Code != nameToken || !startsName(pkg.Text(src)) {
			return CallSite{}, false
		}
		site.Package = pkg.Text(src)
		site.Offset = pkg.Start
		site.QualifierStart = pkg.Start
		site.QualifierEnd = sep.End
	case anyToken:
		switch sep.Text(src) {
		case "$", "@":
			return CallSite{}, false
		}
	}
	return site, true
}

// startsName reports whether s is a name rather than a number literal.
func startsName(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c >= '0' && c <= '9' {
		return false
	}
	if c == '.' && len(s) > 1 && s[1] >= '0' && s[1] <= '9' {
		return false
	}
	return true
}

func unquoteBacktick(s string) string {
	if len(s) < 2 || s[0] != '`' || s[len(s)-1] != '`' {
		return ""
	}
	return s[1 : len(s)-1]
}
