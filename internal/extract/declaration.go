package extract

import (
	"strings"

	"github.com/viant/parsly"
)

// Declaration is one package clause of an existing box import line, such as
// dplyr[filter, mutate] in use(dplyr[filter, mutate]). Start and End cover
// the whole line, trailing newline included, so the rewriter can drop it.
type Declaration struct {
	Package   string
	Functions []string
	Start     int
	End       int
	Line      int
}

// declarations finds every line of src that is entirely a box import
// declaration listing pkg[fn, ...] clauses. A bare use(...) line counts only
// after a box::use(...) line has attached box; before that it is an ordinary
// call.
func declarations(src string) []Declaration {
	var out []Declaration
	boxed := false
	line := 1
	for start := 0; start < len(src); line++ {
		end := strings.IndexByte(src[start:], '\n')
		next := len(src)
		if end >= 0 {
			end += start
			next = end + 1
		} else {
			end = len(src)
		}
		if clauses, qualified, ok := parseDeclaration(src[start:end]); ok && (qualified || boxed) {
			boxed = true
			for _, c := range clauses {
				c.Start, c.End, c.Line = start, next, line
				out = append(out, c)
			}
		}
		start = next
	}
	return out
}

// parseDeclaration parses a single line; qualified reports the box::use form.
// Aliases and anything else box accepts beyond pkg[fn, ...] are not
// recognized, and package and function names must not be numbers.
func parseDeclaration(line string) (clauses []Declaration, qualified bool, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	qualified = strings.HasPrefix(trimmed, "box::use(")
	if !qualified && !strings.HasPrefix(trimmed, "use(") {
		return nil, false, false
	}
	cursor := parsly.NewCursor("", []byte(line), 0)

	head := cursor.MatchAfterOptional(whitespaceMatcher, nameMatcher)
	if head.Code != nameToken {
		return nil, false, false
	}
	if head.Text(cursor) == "box" {
		if cursor.MatchOne(doubleColonMatcher).Code != doubleColonToken {
			return nil, false, false
		}
		head = cursor.MatchOne(nameMatcher)
	}
	if head.Code != nameToken || head.Text(cursor) != "use" {
		return nil, false, false
	}
	if cursor.MatchOne(openParenMatcher).Code != openParenToken {
		return nil, false, false
	}

	for {
		pkg := cursor.MatchAfterOptional(whitespaceMatcher, nameMatcher)
		if pkg.Code != nameToken || !startsName(pkg.Text(cursor)) {
			return nil, false, false
		}
		clause := Declaration{Package: pkg.Text(cursor)}
		if cursor.MatchAfterOptional(whitespaceMatcher, openBracketMatcher).Code != openBracketToken {
			return nil, false, false
		}
		for {
			item := cursor.MatchAfterOptional(whitespaceMatcher, nameMatcher, backtickMatcher)
			switch item.Code {
			case nameToken:
				fn := item.Text(cursor)
				if !startsName(fn) {
					return nil, false, false
				}
				clause.Functions = append(clause.Functions, fn)
			case backtickToken:
				fn := unquoteBacktick(item.Text(cursor))
				if fn == "" {
					return nil, false, false
				}
				clause.Functions = append(clause.Functions, fn)
			default:
				return nil, false, false
			}
			sep := cursor.MatchAfterOptional(whitespaceMatcher, commaMatcher, closeBracketMatcher)
			if sep.Code == closeBracketToken {
				break
			}
			if sep.Code != commaToken {
				return nil, false, false
			}
		}
		clauses = append(clauses, clause)

		sep := cursor.MatchAfterOptional(whitespaceMatcher, commaMatcher, closeParenMatcher)
		if sep.Code == closeParenToken {
			break
		}
		if sep.Code != commaToken {
			return nil, false, false
		}
	}

	rest := strings.TrimSpace(line[cursor.Pos:])
	if rest != "" && rest[0] != '#' {
		return nil, false, false
	}
	return clauses, qualified, true
}
