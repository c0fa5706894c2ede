// Package parser turns a token stream into a value.Value tree. Two
// independent implementations live here: Parser (recursive descent, the
// reference form) and IterativeParser (an explicit-stack form that does
// not recurse on the Go call stack, used on untrusted input that might
// nest deeply enough to exhaust it). Both must accept exactly the same
// inputs and produce equal trees; agree_test.go checks that property.
package parser

import (
	"strconv"
	"strings"

	"github.com/flexjson/flexjson/ferr"
	"github.com/flexjson/flexjson/internal/lexer"
	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/token"
	"github.com/flexjson/flexjson/value"
)

// Parser is the recursive-descent implementation of the grammar in
// SYSTEM OVERVIEW §4.E. It is the easiest form to read and audit, and is
// used as the reference the iterative form is checked against.
type Parser struct {
	input string
	opts  options.ParserOptions
	lex   *lexer.Lexer
	cur   token.Token
	depth int
}

// New creates a Parser over input configured by opts.
func New(input string, opts options.ParserOptions) *Parser {
	opts = opts.Normalize()
	mode := lexer.Strict
	if opts.AllowComments || opts.AllowUnquotedKeys || opts.AllowSingleQuotes || opts.AllowAlternateNumberBases {
		mode = lexer.Forgiving
	}
	return &Parser{input: input, opts: opts, lex: lexer.New(input, mode)}
}

// Parse runs the recursive-descent grammar to completion, consuming the
// whole input through Eof.
func (p *Parser) Parse() (value.Value, error) {
	if err := p.advance(); err != nil {
		return value.Value{}, err
	}
	p.skipInsignificant()

	v, err := p.parseRoot()
	if err != nil {
		return value.Value{}, err
	}

	p.skipInsignificant()
	for p.cur.Kind == token.Newline {
		if err := p.advance(); err != nil {
			return value.Value{}, err
		}
		p.skipInsignificant()
	}
	if p.cur.Kind != token.Eof {
		return value.Value{}, ferr.Expected("end of input", p.describe(p.cur), p.cur.Span.Start, p.input)
	}
	return v, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) isComment(k token.Kind) bool {
	return k == token.SingleLineComment || k == token.MultiLineComment
}

// skipInsignificant advances past comments unconditionally, and past
// Newline tokens unless NewlineAsComma is set (in which case the caller
// handles Newline itself, as a separator).
func (p *Parser) skipInsignificant() {
	for {
		if p.isComment(p.cur.Kind) || (p.cur.Kind == token.Newline && !p.opts.NewlineAsComma) {
			p.advance()
			continue
		}
		return
	}
}

func (p *Parser) isSeparator(k token.Kind) bool {
	return k == token.Comma || (k == token.Newline && p.opts.NewlineAsComma)
}

func (p *Parser) describe(tok token.Token) string {
	if tok.Kind == token.Eof {
		return "end of input"
	}
	return tok.Kind.String()
}

// parseRoot implements the top-level disambiguation rule: leading
// newlines are skipped; an explicit container is never wrapped; otherwise
// a leading comma starts an implicit array with a leading Null, a bare
// `key:` starts an implicit object, and anything else is a single root
// value.
func (p *Parser) parseRoot() (value.Value, error) {
	for p.cur.Kind == token.Newline {
		if err := p.advance(); err != nil {
			return value.Value{}, err
		}
		p.skipInsignificant()
	}
	if p.opts.AllowImplicitTopLevel {
		if p.cur.Kind == token.LeftBrace || p.cur.Kind == token.LeftBracket {
			return p.parseValue()
		}
		if p.cur.Kind == token.Comma {
			return p.parseImplicitArray()
		}
		if p.isKeyToken(p.cur.Kind) {
			return p.parseImplicitTopLevel()
		}
	}
	return p.parseValue()
}

func (p *Parser) isKeyToken(k token.Kind) bool {
	return k == token.String || k == token.UnquotedString || k == token.Number
}

// parseImplicitTopLevel parses one value, then decides whether it was the
// first key of an implicit object (next significant token is `:`), the
// first element of an implicit array (next significant token is a
// separator), or the whole root by itself.
func (p *Parser) parseImplicitTopLevel() (value.Value, error) {
	start := p.cur
	startText := p.input[start.Span.Start:start.Span.End]

	v, err := p.parseValue()
	if err != nil {
		return value.Value{}, err
	}

	p.skipInsignificant()
	if p.cur.Kind == token.Colon {
		key, err := p.decodeKeyText(start, startText)
		if err != nil {
			return value.Value{}, err
		}
		p.advance()
		p.skipInsignificant()
		firstVal, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		return p.parseImplicitObjectRest(key, firstVal)
	}

	if p.isSeparator(p.cur.Kind) {
		return p.parseImplicitArrayRest(v)
	}

	return v, nil
}

func (p *Parser) decodeKeyText(tok token.Token, text string) (string, error) {
	switch tok.Kind {
	case token.String:
		return decodeString(text, p.opts, tok.Span.Start, p.input)
	case token.UnquotedString:
		if !p.opts.AllowUnquotedKeys {
			return "", ferr.Expected("string", "unquoted key", tok.Span.Start, p.input)
		}
		return text, nil
	case token.Number:
		return text, nil
	default:
		return "", ferr.Expected("key", p.describe(tok), tok.Span.Start, p.input)
	}
}

func (p *Parser) parseImplicitArray() (value.Value, error) {
	return p.parseImplicitArrayRest(value.NewNull())
}

// parseImplicitArrayRest finishes an implicit array whose first element
// (already parsed, possibly the zero Value standing in for a leading
// Null) is first. Separator-run semantics match parseArray: a run of
// separators between two values inserts Nulls, and one trailing separator
// before end of input adds nothing.
func (p *Parser) parseImplicitArrayRest(first value.Value) (value.Value, error) {
	elems := []value.Value{first}
	expectValue := false

	for {
		p.skipInsignificant()
		if p.isSeparator(p.cur.Kind) {
			if expectValue {
				elems = append(elems, value.NewNull())
			}
			expectValue = true
			p.advance()
			continue
		}
		if p.cur.Kind == token.Eof {
			break
		}
		if !expectValue {
			break
		}
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)
		expectValue = false
	}

	return value.NewArray(elems), nil
}

func (p *Parser) parseImplicitObjectRest(firstKey string, firstVal value.Value) (value.Value, error) {
	keys := []string{firstKey}
	vals := map[string]value.Value{firstKey: firstVal}
	p.recordKey(&keys, vals, firstKey, firstVal)

	for {
		p.skipInsignificant()
		if !p.isSeparator(p.cur.Kind) {
			break
		}
		p.advance()
		p.skipInsignificant()
		if p.cur.Kind == token.Eof {
			break
		}
		key, val, err := p.parsePair()
		if err != nil {
			return value.Value{}, err
		}
		p.recordKey(&keys, vals, key, val)
	}

	return value.NewObject(keys, vals), nil
}

func (p *Parser) recordKey(keys *[]string, vals map[string]value.Value, key string, val value.Value) {
	if _, exists := vals[key]; !exists {
		*keys = append(*keys, key)
	}
	vals[key] = val
}

// parseValue parses a single JSON value: object, array, or scalar.
func (p *Parser) parseValue() (value.Value, error) {
	p.skipInsignificant()
	switch p.cur.Kind {
	case token.LeftBrace:
		return p.parseObject()
	case token.LeftBracket:
		return p.parseArray()
	case token.String:
		text := p.cur.Span.Text(p.input)
		start := p.cur.Span.Start
		s, err := decodeString(text, p.opts, start, p.input)
		if err != nil {
			return value.Value{}, err
		}
		p.advance()
		return value.NewString(s), nil
	case token.UnquotedString:
		if !p.opts.AllowUnquotedKeys {
			return value.Value{}, ferr.UnexpectedChar(rune(p.input[p.cur.Span.Start]), p.cur.Span.Start, p.input)
		}
		s := p.cur.Span.Text(p.input)
		p.advance()
		return value.NewString(s), nil
	case token.Number:
		v, err := decodeNumber(p.cur.Span.Text(p.input), p.opts, p.cur.Span.Start, p.input)
		if err != nil {
			return value.Value{}, err
		}
		p.advance()
		return v, nil
	case token.True:
		p.advance()
		return value.NewBool(true), nil
	case token.False:
		p.advance()
		return value.NewBool(false), nil
	case token.Null:
		p.advance()
		return value.NewNull(), nil
	case token.Eof:
		return value.Value{}, ferr.UnexpectedEof(p.cur.Span.Start, p.input)
	default:
		return value.Value{}, ferr.Expected("value", p.describe(p.cur), p.cur.Span.Start, p.input)
	}
}

func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return ferr.DepthLimitExceeded(p.cur.Span.Start, p.input)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) parseObject() (value.Value, error) {
	if err := p.enter(); err != nil {
		return value.Value{}, err
	}
	defer p.leave()

	p.advance()
	p.skipInsignificant()

	var keys []string
	vals := map[string]value.Value{}

	if p.cur.Kind == token.RightBrace {
		p.advance()
		return value.NewObject(keys, vals), nil
	}

	for {
		p.skipInsignificant()
		key, val, err := p.parsePair()
		if err != nil {
			return value.Value{}, err
		}
		p.recordKey(&keys, vals, key, val)

		p.skipInsignificant()
		if p.isSeparator(p.cur.Kind) {
			sepPos := p.cur.Span.Start
			p.advance()
			p.skipInsignificant()
			if p.cur.Kind == token.RightBrace {
				if !p.opts.AllowTrailingCommas {
					return value.Value{}, ferr.TrailingComma(sepPos, p.input)
				}
				break
			}
			continue
		}
		break
	}

	p.skipInsignificant()
	if p.cur.Kind != token.RightBrace {
		return value.Value{}, ferr.BracketMismatch(p.cur.Span.Start, '}', p.curByte(), p.input)
	}
	p.advance()
	return value.NewObject(keys, vals), nil
}

func (p *Parser) curByte() byte {
	if p.cur.Span.Start < len(p.input) {
		return p.input[p.cur.Span.Start]
	}
	return 0
}

func (p *Parser) parsePair() (string, value.Value, error) {
	keyTok := p.cur
	if !p.isKeyToken(keyTok.Kind) {
		return "", value.Value{}, ferr.Expected("key", p.describe(keyTok), keyTok.Span.Start, p.input)
	}
	key, err := p.decodeKeyText(keyTok, keyTok.Span.Text(p.input))
	if err != nil {
		return "", value.Value{}, err
	}
	p.advance()
	p.skipInsignificant()

	if p.cur.Kind != token.Colon {
		return "", value.Value{}, ferr.Expected(":", p.describe(p.cur), p.cur.Span.Start, p.input)
	}
	p.advance()
	p.skipInsignificant()

	val, err := p.parseValue()
	if err != nil {
		return "", value.Value{}, ferr.WithContext("in object value", err)
	}
	return key, val, nil
}

func (p *Parser) parseArray() (value.Value, error) {
	if err := p.enter(); err != nil {
		return value.Value{}, err
	}
	defer p.leave()

	p.advance()
	p.skipInsignificant()

	var elems []value.Value
	if p.cur.Kind == token.RightBracket {
		p.advance()
		return value.NewArray(elems), nil
	}

	for {
		p.skipInsignificant()
		v, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		elems = append(elems, v)

		p.skipInsignificant()
		expectingAnother := false
		for p.isSeparator(p.cur.Kind) {
			sepPos := p.cur.Span.Start
			p.advance()
			p.skipInsignificant()
			if p.cur.Kind == token.RightBracket {
				if !p.opts.AllowTrailingCommas {
					return value.Value{}, ferr.TrailingComma(sepPos, p.input)
				}
				break
			}
			if p.isSeparator(p.cur.Kind) {
				elems = append(elems, value.NewNull())
				continue
			}
			expectingAnother = true
			break
		}
		if p.cur.Kind == token.RightBracket {
			break
		}
		if !expectingAnother {
			break
		}
	}

	p.skipInsignificant()
	if p.cur.Kind != token.RightBracket {
		return value.Value{}, ferr.BracketMismatch(p.cur.Span.Start, ']', p.curByte(), p.input)
	}
	p.advance()
	return value.NewArray(elems), nil
}

// decodeString strips quotes and resolves escape sequences per §4.E.
func decodeString(raw string, opts options.ParserOptions, pos int, input string) (string, error) {
	if len(raw) < 2 {
		return "", ferr.UnterminatedString(pos, input)
	}
	quote := raw[0]
	if quote == '\'' && !opts.AllowSingleQuotes {
		return "", ferr.UnexpectedChar('\'', pos, input)
	}
	body := raw[1 : len(raw)-1]

	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	i := 0
	for i < len(body) {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", ferr.InvalidEscape(pos+1+i, input)
		}
		esc := body[i+1]
		switch esc {
		case '"':
			b.WriteByte('"')
			i += 2
		case '\'':
			b.WriteByte('\'')
			i += 2
		case '\\':
			b.WriteByte('\\')
			i += 2
		case '/':
			b.WriteByte('/')
			i += 2
		case 'b':
			b.WriteByte('\b')
			i += 2
		case 'f':
			b.WriteByte('\f')
			i += 2
		case 'n':
			b.WriteByte('\n')
			i += 2
		case 'r':
			b.WriteByte('\r')
			i += 2
		case 't':
			b.WriteByte('\t')
			i += 2
		case 'u':
			r, consumed, err := decodeUnicodeEscape(body, i, pos, input)
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
			i += consumed
		default:
			return "", ferr.InvalidEscape(pos+1+i, input)
		}
	}
	return b.String(), nil
}

// decodeUnicodeEscape decodes a \uHHHH escape starting at body[i] (where
// body[i] == '\\' and body[i+1] == 'u'), combining a high/low surrogate
// pair into one rune when present.
func decodeUnicodeEscape(body string, i, basePos int, input string) (rune, int, error) {
	hex, err := readHex4(body, i+2, basePos, input)
	if err != nil {
		return 0, 0, err
	}
	if hex >= 0xD800 && hex <= 0xDBFF {
		if i+6+6 <= len(body) && body[i+6] == '\\' && body[i+7] == 'u' {
			low, err := readHex4(body, i+8, basePos, input)
			if err == nil && low >= 0xDC00 && low <= 0xDFFF {
				combined := 0x10000 + (hex-0xD800)*0x400 + (low - 0xDC00)
				return rune(combined), 12, nil
			}
		}
		return rune(hex), 6, nil
	}
	return rune(hex), 6, nil
}

func readHex4(body string, start, basePos int, input string) (int, error) {
	if start+4 > len(body) {
		return 0, ferr.InvalidUnicode(basePos+1+start, input)
	}
	n, err := strconv.ParseInt(body[start:start+4], 16, 32)
	if err != nil {
		return 0, ferr.InvalidUnicode(basePos+1+start, input)
	}
	return int(n), nil
}

// decodeNumber attempts an integer parse, then a float parse, per §4.E.
// The lexer recognizes the widest number shape regardless of which
// forgiving features are enabled (so one token stream serves every
// option combination); decodeNumber is where AllowAlternateNumberBases
// is actually enforced, the same way decodeKeyText enforces
// AllowUnquotedKeys and decodeString enforces AllowSingleQuotes.
// Alternate bases decode as unsigned and are cast to int64. Underscore
// separators are stripped first.
func decodeNumber(raw string, opts options.ParserOptions, pos int, input string) (value.Value, error) {
	clean := raw
	if strings.ContainsRune(clean, '_') {
		if !opts.AllowAlternateNumberBases {
			return value.Value{}, ferr.UnexpectedChar('_', pos, input)
		}
		clean = strings.ReplaceAll(clean, "_", "")
	}

	// With no forgiving flag set the lexer ran in Strict mode, so only the
	// RFC 8259 shape is accepted: no leading '+', no leading or trailing '.'.
	if !(opts.AllowComments || opts.AllowUnquotedKeys || opts.AllowSingleQuotes || opts.AllowAlternateNumberBases) {
		digits := strings.TrimPrefix(clean, "-")
		if clean[0] == '+' || strings.HasPrefix(digits, ".") || strings.HasSuffix(digits, ".") ||
			strings.Contains(digits, ".e") || strings.Contains(digits, ".E") {
			return value.Value{}, ferr.InvalidNumber(pos, input)
		}
	}

	if len(clean) > 1 && clean[0] == '0' && len(clean) > 2 {
		switch clean[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			if !opts.AllowAlternateNumberBases {
				return value.Value{}, ferr.UnexpectedChar(rune(clean[1]), pos+1, input)
			}
		}
		switch clean[1] {
		case 'x', 'X':
			n, err := strconv.ParseUint(clean[2:], 16, 64)
			if err != nil {
				return value.Value{}, ferr.InvalidNumber(pos, input)
			}
			return value.NewInteger(int64(n)), nil
		case 'o', 'O':
			n, err := strconv.ParseUint(clean[2:], 8, 64)
			if err != nil {
				return value.Value{}, ferr.InvalidNumber(pos, input)
			}
			return value.NewInteger(int64(n)), nil
		case 'b', 'B':
			n, err := strconv.ParseUint(clean[2:], 2, 64)
			if err != nil {
				return value.Value{}, ferr.InvalidNumber(pos, input)
			}
			return value.NewInteger(int64(n)), nil
		}
	}

	// A trailing '.' with no fractional digits and no exponent yields an
	// integer (the digits before the dot), per the grammar's `digits "."
	// digits?` allowing an empty fractional part.
	if strings.HasSuffix(clean, ".") {
		if n, err := strconv.ParseInt(clean[:len(clean)-1], 10, 64); err == nil {
			return value.NewInteger(n), nil
		}
	}

	normalized := clean
	if strings.HasSuffix(normalized, ".") {
		normalized = normalized + "0"
	}
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	} else if strings.HasPrefix(normalized, "-.") {
		normalized = "-0" + normalized[1:]
	} else if strings.HasPrefix(normalized, "+.") {
		normalized = "+0" + normalized[1:]
	}
	normalized = strings.TrimPrefix(normalized, "+")

	if !strings.ContainsAny(normalized, ".eE") {
		n, err := strconv.ParseInt(normalized, 10, 64)
		if err == nil {
			return value.NewInteger(n), nil
		}
	}

	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return value.Value{}, ferr.InvalidNumber(pos, input)
	}
	return value.NewFloat(f), nil
}
