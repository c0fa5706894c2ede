// Package token defines the token kinds and byte-span positions produced by
// the lexer and consumed by the parser.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind uint8

const (
	Illegal Kind = iota
	Eof

	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Colon
	Comma
	Newline

	String
	UnquotedString
	Number
	True
	False
	Null

	SingleLineComment
	MultiLineComment
)

var kindNames = [...]string{
	Illegal:            "ILLEGAL",
	Eof:                "EOF",
	LeftBrace:          "{",
	RightBrace:         "}",
	LeftBracket:        "[",
	RightBracket:       "]",
	Colon:              ":",
	Comma:              ",",
	Newline:            "NEWLINE",
	String:             "STRING",
	UnquotedString:     "UNQUOTED_STRING",
	Number:             "NUMBER",
	True:               "TRUE",
	False:              "FALSE",
	Null:               "NULL",
	SingleLineComment:  "LINE_COMMENT",
	MultiLineComment:   "BLOCK_COMMENT",
}

// String returns the human-readable name of the token kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Span is a half-open byte range [Start, End) into the original input.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text extracts the span's bytes from the original input.
func (s Span) Text(input string) string {
	return input[s.Start:s.End]
}

// Position is a line/column location derived from a byte offset, used only
// for diagnostics; the lexer and parser otherwise operate on byte offsets.
type Position struct {
	Offset int // byte offset within the input
	Line   int // 1-indexed line number
	Column int // 1-indexed column number
}

// String renders the position as "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// PositionOf converts a byte offset into a line/column Position by counting
// newlines in input[:offset]. Each call rescans the input from its start.
func PositionOf(input string, offset int) Position {
	if offset > len(input) {
		offset = len(input)
	}
	line := 1
	col := 1
	for i := 0; i < offset; i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Offset: offset, Line: line, Column: col}
}

// Token is one lexical unit: a Kind plus the Span of input bytes it came
// from. The literal text is never stored on the token; callers read it
// back from the input via Span.Text when they need to decode it.
type Token struct {
	Kind Kind
	Span Span
}

// IsEof reports whether this token is the end-of-stream sentinel.
func (t Token) IsEof() bool {
	return t.Kind == Eof
}
