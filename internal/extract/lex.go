package extract

import (
	"iter"

	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceToken int = iota + 1
	commentToken
	stringToken
	backtickToken
	infixToken
	tripleColonToken
	doubleColonToken
	nameToken
	openParenToken
	closeParenToken
	openBracketToken
	closeBracketToken
	commaToken
	anyToken
)

var whitespaceMatcher = parsly.NewToken(whitespaceToken, "Whitespace", matcher.NewWhiteSpace())
var commentMatcher = parsly.NewToken(commentToken, "Comment", &lineComment{})
var doubleQuoteMatcher = parsly.NewToken(stringToken, "String", &quoted{quote: '"'})
var singleQuoteMatcher = parsly.NewToken(stringToken, "String", &quoted{quote: '\''})
var backtickMatcher = parsly.NewToken(backtickToken, "Backtick name", &quoted{quote: '`'})
var infixMatcher = parsly.NewToken(infixToken, "Infix operator", &infix{})
var tripleColonMatcher = parsly.NewToken(tripleColonToken, ":::", matcher.NewFragment(":::"))
var doubleColonMatcher = parsly.NewToken(doubleColonToken, "::", matcher.NewFragment("::"))
var nameMatcher = parsly.NewToken(nameToken, "Name", &name{})
var openParenMatcher = parsly.NewToken(openParenToken, "(", matcher.NewByte('('))
var closeParenMatcher = parsly.NewToken(closeParenToken, ")", matcher.NewByte(')'))
var openBracketMatcher = parsly.NewToken(openBracketToken, "[", matcher.NewByte('['))
var closeBracketMatcher = parsly.NewToken(closeBracketToken, "]", matcher.NewByte(']'))
var commaMatcher = parsly.NewToken(commaToken, ",", matcher.NewByte(','))
var anyMatcher = parsly.NewToken(anyToken, "Any", &anyByte{})

// lexicon is tried in order at every position; anyMatcher guarantees progress.
var lexicon = []*parsly.Token{
	whitespaceMatcher,
	commentMatcher,
	doubleQuoteMatcher,
	singleQuoteMatcher,
	backtickMatcher,
	infixMatcher,
	tripleColonMatcher,
	doubleColonMatcher,
	nameMatcher,
	openParenMatcher,
	closeParenMatcher,
	openBracketMatcher,
	closeBracketMatcher,
	commaMatcher,
	anyMatcher,
}

// Lexeme is one token of script text, as a byte range of the source.
type Lexeme struct {
	Code  int
	Start int
	End   int
}

// Text returns the lexeme's source text.
func (l Lexeme) Text(src string) string {
	return src[l.Start:l.End]
}

// significant reports whether the lexeme can take part in a call or load.
func (l Lexeme) significant() bool {
	switch l.Code {
	case whitespaceToken, commentToken:
		return false
	}
	return true
}

// Lex returns a lazy sequence of every lexeme in src, whitespace and comments
// included. Each iteration rescans src from the beginning.
func Lex(src string) iter.Seq[Lexeme] {
	return func(yield func(Lexeme) bool) {
		cursor := parsly.NewCursor("", []byte(src), 0)
		for cursor.Pos < cursor.InputSize {
			start := cursor.Pos
			matched := cursor.MatchAny(lexicon...)
			switch matched.Code {
			case parsly.EOF, parsly.Invalid:
				cursor.Pos = start + 1
				continue
			}
			if cursor.Pos <= start {
				cursor.Pos = start + 1
			}
			if !yield(Lexeme{Code: matched.Code, Start: start, End: cursor.Pos}) {
				return
			}
		}
	}
}

// lineComment matches "#" up to, not including, the end of the line.
type lineComment struct{}

func (c *lineComment) Match(cursor *parsly.Cursor) (matched int) {
	if cursor.Pos >= cursor.InputSize || cursor.Input[cursor.Pos] != '#' {
		return 0
	}
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if cursor.Input[i] == '\n' {
			return matched
		}
		matched++
	}
	return matched
}

// quoted matches a quote-delimited literal with backslash escapes. An
// unterminated literal runs to the end of input.
type quoted struct {
	quote byte
}

func (q *quoted) Match(cursor *parsly.Cursor) (matched int) {
	if cursor.Pos >= cursor.InputSize || cursor.Input[cursor.Pos] != q.quote {
		return 0
	}
	for i := cursor.Pos + 1; i < cursor.InputSize; i++ {
		switch cursor.Input[i] {
		case '\\':
			i++
		case q.quote:
			return i - cursor.Pos + 1
		}
	}
	return cursor.InputSize - cursor.Pos
}

// infix matches a user-defined infix operator such as %>% or %in%, which
// never spans lines.
type infix struct{}

func (o *infix) Match(cursor *parsly.Cursor) (matched int) {
	if cursor.Pos >= cursor.InputSize || cursor.Input[cursor.Pos] != '%' {
		return 0
	}
	for i := cursor.Pos + 1; i < cursor.InputSize; i++ {
		switch cursor.Input[i] {
		case '\n':
			return 0
		case '%':
			return i - cursor.Pos + 1
		}
	}
	return 0
}

// name matches a run of letters, digits, underscores and dots. Bytes of
// multi-byte UTF-8 sequences count as letters.
type name struct{}

func (n *name) Match(cursor *parsly.Cursor) (matched int) {
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if !isNameByte(cursor.Input[i]) {
			return matched
		}
		matched++
	}
	return matched
}

func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' ||
		b == '_' || b == '.' || b >= 0x80
}

// anyByte matches exactly one byte.
type anyByte struct{}

func (a *anyByte) Match(cursor *parsly.Cursor) (matched int) {
	if cursor.Pos < cursor.InputSize {
		return 1
	}
	return 0
}
