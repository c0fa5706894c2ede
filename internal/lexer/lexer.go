// Package lexer tokenizes JSON source text. It runs in one of two modes:
// Strict, which accepts only the JSON grammar, and Forgiving, which also
// accepts comments, single-quoted strings, unquoted keys, trailing commas,
// and alternate-base/underscore-separated numbers.
package lexer

import (
	"unicode/utf8"

	"github.com/flexjson/flexjson/ferr"
	"github.com/flexjson/flexjson/token"
)

// Mode selects which grammar variant the lexer accepts.
type Mode uint8

const (
	// Strict accepts only RFC 8259 JSON. Number literals and bare
	// identifiers are still tokenized in their widest shape; the parser
	// rejects the non-JSON ones.
	Strict Mode = iota
	// Forgiving additionally accepts comments, unquoted keys, single
	// quotes, trailing commas (left to the parser to permit), and
	// alternate-base numbers.
	Forgiving
)

// Lexer produces a stream of tokens from an input string. It is not safe
// for concurrent use; callers needing concurrent tokenization should
// construct one Lexer per goroutine.
type Lexer struct {
	input  string
	pos    int
	mode   Mode
	peeked *token.Token
}

// New creates a Lexer over input in the given mode.
func New(input string, mode Mode) *Lexer {
	return &Lexer{input: input, mode: mode}
}

// Position returns the current byte offset into the input.
func (l *Lexer) Position() int {
	return l.pos
}

// Next returns the next token, advancing past it.
func (l *Lexer) Next() (token.Token, error) {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok, nil
	}
	return l.nextImpl()
}

// Peek returns the next token without advancing.
func (l *Lexer) Peek() (token.Token, error) {
	if l.peeked == nil {
		tok, err := l.nextImpl()
		if err != nil {
			return token.Token{}, err
		}
		l.peeked = &tok
	}
	return *l.peeked, nil
}

func (l *Lexer) forgiving() bool {
	return l.mode == Forgiving
}

func (l *Lexer) byteAt(i int) byte {
	if i >= len(l.input) {
		return 0
	}
	return l.input[i]
}

// skipWhitespace consumes space, tab, and carriage return. Newline is not
// whitespace here: it is emitted as its own Newline token so the parser
// can decide, per NewlineAsComma, whether it acts as a separator.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) nextImpl() (token.Token, error) {
	for {
		l.skipWhitespace()

		if l.pos >= len(l.input) {
			return token.Token{Kind: token.Eof, Span: token.Span{Start: l.pos, End: l.pos}}, nil
		}

		ch := l.input[l.pos]
		switch ch {
		case '\n':
			return l.single(token.Newline), nil
		case '{':
			return l.single(token.LeftBrace), nil
		case '}':
			return l.single(token.RightBrace), nil
		case '[':
			return l.single(token.LeftBracket), nil
		case ']':
			return l.single(token.RightBracket), nil
		case ',':
			return l.single(token.Comma), nil
		case ':':
			return l.single(token.Colon), nil
		case '"':
			return l.lexString('"')
		case '\'':
			if l.forgiving() {
				return l.lexString('\'')
			}
			return token.Token{}, ferr.UnexpectedChar(rune(ch), l.pos, l.input)
		case '-', '+', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
			return l.lexNumber()
		case '/':
			if l.forgiving() && l.pos+1 < len(l.input) {
				switch l.byteAt(l.pos + 1) {
				case '/':
					start := l.pos
					l.pos += 2
					l.skipLineComment()
					return token.Token{Kind: token.SingleLineComment, Span: token.Span{Start: start, End: l.pos}}, nil
				case '*':
					start := l.pos
					l.pos += 2
					if err := l.skipBlockComment(); err != nil {
						return token.Token{}, err
					}
					return token.Token{Kind: token.MultiLineComment, Span: token.Span{Start: start, End: l.pos}}, nil
				}
			}
			return token.Token{}, ferr.UnexpectedChar('/', l.pos, l.input)
		case '#':
			if l.forgiving() {
				start := l.pos
				l.pos++
				l.skipLineComment()
				return token.Token{Kind: token.SingleLineComment, Span: token.Span{Start: start, End: l.pos}}, nil
			}
			return token.Token{}, ferr.UnexpectedChar('#', l.pos, l.input)
		default:
			if isIdentStart(ch) {
				return l.lexIdentifier()
			}
			r, size := utf8.DecodeRuneInString(l.input[l.pos:])
			if r == utf8.RuneError && size <= 1 {
				return token.Token{}, ferr.InvalidUtf8(l.pos, l.input)
			}
			return token.Token{}, ferr.UnexpectedChar(r, l.pos, l.input)
		}
	}
}

func (l *Lexer) single(kind token.Kind) token.Token {
	start := l.pos
	l.pos++
	return token.Token{Kind: kind, Span: token.Span{Start: start, End: l.pos}}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9') || ch == '-'
}

func (l *Lexer) lexIdentifier() (token.Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentCont(l.input[l.pos]) {
		l.pos++
	}
	span := token.Span{Start: start, End: l.pos}
	switch l.input[start:l.pos] {
	case "true":
		return token.Token{Kind: token.True, Span: span}, nil
	case "false":
		return token.Token{Kind: token.False, Span: span}, nil
	case "null":
		return token.Token{Kind: token.Null, Span: span}, nil
	default:
		return token.Token{Kind: token.UnquotedString, Span: span}, nil
	}
}

func (l *Lexer) lexString(quote byte) (token.Token, error) {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case '\\':
			l.pos++
			if l.pos < len(l.input) {
				l.pos++
			}
		case quote:
			l.pos++
			return token.Token{Kind: token.String, Span: token.Span{Start: start, End: l.pos}}, nil
		case '\n':
			return token.Token{}, ferr.UnterminatedString(start, l.input)
		default:
			l.pos++
		}
	}
	return token.Token{}, ferr.UnterminatedString(start, l.input)
}

// lexNumber accepts the RFC 8259 grammar plus, in forgiving mode, leading
// '+', a bare leading '.', trailing '.', 0x/0o/0b alternate bases, and '_'
// digit separators. Mode-gating of these extensions is left to the parser,
// which rejects extension-only shapes when operating in strict mode; the
// lexer always recognizes the widest shape so a single token stream can
// feed either parser mode.
func (l *Lexer) lexNumber() (token.Token, error) {
	start := l.pos

	if l.byteAt(l.pos) == '-' || l.byteAt(l.pos) == '+' {
		l.pos++
	}

	startsWithDot := l.byteAt(l.pos) == '.'

	if !startsWithDot {
		if l.byteAt(l.pos) == '0' {
			switch l.byteAt(l.pos + 1) {
			case 'x', 'X':
				l.pos += 2
				if !isHexDigit(l.byteAt(l.pos)) {
					return token.Token{}, ferr.InvalidNumber(start, l.input)
				}
				for isHexDigit(l.byteAt(l.pos)) || l.byteAt(l.pos) == '_' {
					l.pos++
				}
				return token.Token{Kind: token.Number, Span: token.Span{Start: start, End: l.pos}}, nil
			case 'o', 'O':
				l.pos += 2
				if !isOctalDigit(l.byteAt(l.pos)) {
					return token.Token{}, ferr.InvalidNumber(start, l.input)
				}
				for isOctalDigit(l.byteAt(l.pos)) || l.byteAt(l.pos) == '_' {
					l.pos++
				}
				return token.Token{Kind: token.Number, Span: token.Span{Start: start, End: l.pos}}, nil
			case 'b', 'B':
				l.pos += 2
				if !isBinaryDigit(l.byteAt(l.pos)) {
					return token.Token{}, ferr.InvalidNumber(start, l.input)
				}
				for isBinaryDigit(l.byteAt(l.pos)) || l.byteAt(l.pos) == '_' {
					l.pos++
				}
				return token.Token{Kind: token.Number, Span: token.Span{Start: start, End: l.pos}}, nil
			default:
				l.pos++
			}
		} else {
			if !isDigit(l.byteAt(l.pos)) {
				return token.Token{}, ferr.InvalidNumber(start, l.input)
			}
			for isDigit(l.byteAt(l.pos)) || l.byteAt(l.pos) == '_' {
				l.pos++
			}
		}
	}

	if l.byteAt(l.pos) == '.' {
		l.pos++
		if l.byteAt(l.pos) == '.' {
			return token.Token{}, ferr.InvalidNumber(start, l.input)
		}
		if startsWithDot && !isDigit(l.byteAt(l.pos)) {
			return token.Token{}, ferr.InvalidNumber(start, l.input)
		}
		for isDigit(l.byteAt(l.pos)) || l.byteAt(l.pos) == '_' {
			l.pos++
		}
	} else if startsWithDot {
		return token.Token{}, ferr.InvalidNumber(start, l.input)
	}

	if l.byteAt(l.pos) == 'e' || l.byteAt(l.pos) == 'E' {
		l.pos++
		if l.byteAt(l.pos) == '+' || l.byteAt(l.pos) == '-' {
			l.pos++
		}
		if !isDigit(l.byteAt(l.pos)) {
			return token.Token{}, ferr.InvalidNumber(start, l.input)
		}
		for isDigit(l.byteAt(l.pos)) || l.byteAt(l.pos) == '_' {
			l.pos++
		}
	}

	return token.Token{Kind: token.Number, Span: token.Span{Start: start, End: l.pos}}, nil
}

func isDigit(ch byte) bool       { return ch >= '0' && ch <= '9' }
func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
func isOctalDigit(ch byte) bool  { return ch >= '0' && ch <= '7' }
func isBinaryDigit(ch byte) bool { return ch == '0' || ch == '1' }

func (l *Lexer) skipLineComment() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.pos++
	}
}

func (l *Lexer) skipBlockComment() error {
	start := l.pos - 2
	for l.pos+1 < len(l.input) {
		if l.input[l.pos] == '*' && l.input[l.pos+1] == '/' {
			l.pos += 2
			return nil
		}
		l.pos++
	}
	return ferr.UnexpectedEof(start, l.input)
}
