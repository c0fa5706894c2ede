package parser

import (
	"github.com/flexjson/flexjson/ferr"
	"github.com/flexjson/flexjson/internal/lexer"
	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/token"
	"github.com/flexjson/flexjson/value"
)

// frameKind tags which of the two container frame shapes, array or
// object, a frame holds. There is no separate value frame: a value
// position inside a container is handled in place by descendOrLeaf.
type frameKind uint8

const (
	frameArray frameKind = iota
	frameObject
)

// objState tracks where in the key/colon/value/separator cycle an object
// frame currently is.
type objState uint8

const (
	objExpectKeyOrEnd objState = iota
	objExpectColon
	objExpectValue
	objExpectSepOrEnd
)

type arrState uint8

const (
	arrExpectValueOrEnd arrState = iota
	arrExpectSepOrEnd
)

type frame struct {
	kind frameKind

	// array frame
	arrElems []value.Value
	arrState arrState

	// object frame
	objKeys  []string
	objVals  map[string]value.Value
	objState objState
	pendingKey string
}

// IterativeParser is the stack-based implementation of the same grammar
// Parser implements. It never recurses on the Go call stack for nested
// containers, so input with pathological nesting depth cannot overflow it
// the way the recursive form can; only ParserOptions.MaxDepth bounds it.
type IterativeParser struct {
	input string
	opts  options.ParserOptions
	lex   *lexer.Lexer
	cur   token.Token
	stack []*frame
}

// NewIterative creates an IterativeParser over input configured by opts.
func NewIterative(input string, opts options.ParserOptions) *IterativeParser {
	opts = opts.Normalize()
	mode := lexer.Strict
	if opts.AllowComments || opts.AllowUnquotedKeys || opts.AllowSingleQuotes || opts.AllowAlternateNumberBases {
		mode = lexer.Forgiving
	}
	return &IterativeParser{input: input, opts: opts, lex: lexer.New(input, mode)}
}

func (p *IterativeParser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *IterativeParser) isComment(k token.Kind) bool {
	return k == token.SingleLineComment || k == token.MultiLineComment
}

func (p *IterativeParser) skipInsignificant() {
	for p.isComment(p.cur.Kind) || (p.cur.Kind == token.Newline && !p.opts.NewlineAsComma) {
		p.advance()
	}
}

func (p *IterativeParser) isSeparator(k token.Kind) bool {
	return k == token.Comma || (k == token.Newline && p.opts.NewlineAsComma)
}

func (p *IterativeParser) isKeyToken(k token.Kind) bool {
	return k == token.String || k == token.UnquotedString || k == token.Number
}

func (p *IterativeParser) describe(tok token.Token) string {
	if tok.Kind == token.Eof {
		return "end of input"
	}
	return tok.Kind.String()
}

func (p *IterativeParser) curByte() byte {
	if p.cur.Span.Start < len(p.input) {
		return p.input[p.cur.Span.Start]
	}
	return 0
}

func (p *IterativeParser) decodeKeyText(tok token.Token, text string) (string, error) {
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

// Parse runs the iterative grammar to completion.
//
// Top-level implicit-container disambiguation is identical to Parser's:
// it is a lookahead decision made once, before any container nesting
// begins, so it is shared logic rather than something the stack machine
// needs to re-derive. Once inside an explicit or implicit container, all
// further work runs on the explicit frame stack.
func (p *IterativeParser) Parse() (value.Value, error) {
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

func (p *IterativeParser) parseRoot() (value.Value, error) {
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
			return p.runArray(true)
		}
		if p.isKeyToken(p.cur.Kind) {
			return p.parseImplicitTopLevel()
		}
	}
	return p.parseValue()
}

func (p *IterativeParser) parseImplicitTopLevel() (value.Value, error) {
	start := p.cur
	startText := start.Span.Text(p.input)

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
		return p.runImplicitObject(key, firstVal)
	}

	if p.isSeparator(p.cur.Kind) {
		return p.runArrayWithFirst(v)
	}

	return v, nil
}

func (p *IterativeParser) runImplicitObject(firstKey string, firstVal value.Value) (value.Value, error) {
	keys := []string{firstKey}
	vals := map[string]value.Value{firstKey: firstVal}

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
		keyTok := p.cur
		if !p.isKeyToken(keyTok.Kind) {
			return value.Value{}, ferr.Expected("key", p.describe(keyTok), keyTok.Span.Start, p.input)
		}
		key, err := p.decodeKeyText(keyTok, keyTok.Span.Text(p.input))
		if err != nil {
			return value.Value{}, err
		}
		p.advance()
		p.skipInsignificant()
		if p.cur.Kind != token.Colon {
			return value.Value{}, ferr.Expected(":", p.describe(p.cur), p.cur.Span.Start, p.input)
		}
		p.advance()
		p.skipInsignificant()
		val, err := p.parseValue()
		if err != nil {
			return value.Value{}, err
		}
		if _, exists := vals[key]; !exists {
			keys = append(keys, key)
		}
		vals[key] = val
	}

	return value.NewObject(keys, vals), nil
}

func (p *IterativeParser) runArray(leadingNull bool) (value.Value, error) {
	var first value.Value
	if leadingNull {
		first = value.NewNull()
	}
	return p.runArrayWithFirst(first)
}

func (p *IterativeParser) runArrayWithFirst(first value.Value) (value.Value, error) {
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

// parseValue parses one value. Scalars are read directly; containers push
// a frame and hand control to the run loop in runContainer.
func (p *IterativeParser) parseValue() (value.Value, error) {
	p.skipInsignificant()
	switch p.cur.Kind {
	case token.LeftBrace:
		return p.runContainer(&frame{kind: frameObject, objVals: map[string]value.Value{}})
	case token.LeftBracket:
		return p.runContainer(&frame{kind: frameArray})
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

// runContainer drives the explicit stack for a single object or array,
// starting from its opening bracket (already current). Depth is the
// stack's own length: this is the "depth equals the size of the explicit
// context stack" rule from §4.E.
func (p *IterativeParser) runContainer(root *frame) (value.Value, error) {
	p.stack = append(p.stack, root)
	p.advance() // consume opening bracket
	p.skipInsignificant()

	for len(p.stack) > 0 {
		if len(p.stack) > p.opts.MaxDepth {
			return value.Value{}, ferr.DepthLimitExceeded(p.cur.Span.Start, p.input)
		}
		top := p.stack[len(p.stack)-1]
		done, result, err := p.step(top)
		if err != nil {
			return value.Value{}, err
		}
		if done {
			p.stack = p.stack[:len(p.stack)-1]
			if len(p.stack) == 0 {
				return result, nil
			}
			p.push(p.stack[len(p.stack)-1], result)
		}
	}
	return value.Value{}, ferr.Custom("container stack emptied without a result")
}

// push stores a completed child value into its parent frame and advances
// that frame past the position it was waiting on. This is the "push
// completed value" routine from §4.E.
func (p *IterativeParser) push(parent *frame, v value.Value) {
	switch parent.kind {
	case frameArray:
		parent.arrElems = append(parent.arrElems, v)
		parent.arrState = arrExpectSepOrEnd
	case frameObject:
		if _, exists := parent.objVals[parent.pendingKey]; !exists {
			parent.objKeys = append(parent.objKeys, parent.pendingKey)
		}
		parent.objVals[parent.pendingKey] = v
		parent.objState = objExpectSepOrEnd
	}
}

// step advances one frame by one logical move: either it finishes
// (returning done=true and its value), or it consumes a leaf value or
// pushes a new container frame (returning done=false, with the new frame
// already on the stack).
func (p *IterativeParser) step(f *frame) (bool, value.Value, error) {
	p.skipInsignificant()

	switch f.kind {
	case frameArray:
		return p.stepArray(f)
	case frameObject:
		return p.stepObject(f)
	default:
		return false, value.Value{}, ferr.Custom("unknown frame kind")
	}
}

func (p *IterativeParser) stepArray(f *frame) (bool, value.Value, error) {
	switch f.arrState {
	case arrExpectValueOrEnd:
		if p.cur.Kind == token.RightBracket {
			p.advance()
			return true, value.NewArray(f.arrElems), nil
		}
		return p.descendOrLeaf(f)
	case arrExpectSepOrEnd:
		if p.cur.Kind == token.RightBracket {
			p.advance()
			return true, value.NewArray(f.arrElems), nil
		}
		if p.isSeparator(p.cur.Kind) {
			sepPos := p.cur.Span.Start
			p.advance()
			p.skipInsignificant()
			if p.cur.Kind == token.RightBracket {
				if !p.opts.AllowTrailingCommas {
					return false, value.Value{}, ferr.TrailingComma(sepPos, p.input)
				}
				p.advance()
				return true, value.NewArray(f.arrElems), nil
			}
			if p.isSeparator(p.cur.Kind) {
				f.arrElems = append(f.arrElems, value.NewNull())
				return false, value.Value{}, nil
			}
			f.arrState = arrExpectValueOrEnd
			return p.descendOrLeaf(f)
		}
		return false, value.Value{}, ferr.Expected(", or ]", p.describe(p.cur), p.cur.Span.Start, p.input)
	default:
		return false, value.Value{}, ferr.Custom("unreachable array state")
	}
}

func (p *IterativeParser) stepObject(f *frame) (bool, value.Value, error) {
	switch f.objState {
	case objExpectKeyOrEnd:
		if p.cur.Kind == token.RightBrace {
			p.advance()
			return true, value.NewObject(f.objKeys, f.objVals), nil
		}
		return false, value.Value{}, p.beginPair(f)
	case objExpectColon:
		if p.cur.Kind != token.Colon {
			return false, value.Value{}, ferr.Expected(":", p.describe(p.cur), p.cur.Span.Start, p.input)
		}
		p.advance()
		p.skipInsignificant()
		f.objState = objExpectValue
		return false, value.Value{}, nil
	case objExpectValue:
		return p.descendOrLeaf(f)
	case objExpectSepOrEnd:
		if p.cur.Kind == token.RightBrace {
			p.advance()
			return true, value.NewObject(f.objKeys, f.objVals), nil
		}
		if p.isSeparator(p.cur.Kind) {
			sepPos := p.cur.Span.Start
			p.advance()
			p.skipInsignificant()
			if p.cur.Kind == token.RightBrace {
				if !p.opts.AllowTrailingCommas {
					return false, value.Value{}, ferr.TrailingComma(sepPos, p.input)
				}
				p.advance()
				return true, value.NewObject(f.objKeys, f.objVals), nil
			}
			f.objState = objExpectKeyOrEnd
			return false, value.Value{}, p.beginPair(f)
		}
		return false, value.Value{}, ferr.Expected(", or }", p.describe(p.cur), p.cur.Span.Start, p.input)
	default:
		return false, value.Value{}, ferr.Custom("unreachable object state")
	}
}

func (p *IterativeParser) beginPair(f *frame) error {
	keyTok := p.cur
	if !p.isKeyToken(keyTok.Kind) {
		return ferr.Expected("key", p.describe(keyTok), keyTok.Span.Start, p.input)
	}
	key, err := p.decodeKeyText(keyTok, keyTok.Span.Text(p.input))
	if err != nil {
		return err
	}
	p.advance()
	p.skipInsignificant()
	f.pendingKey = key
	f.objState = objExpectColon
	return nil
}

// descendOrLeaf handles a value position within a container frame: either
// it pushes a new container frame (and the caller's loop will pick that
// up next iteration) or it reads a scalar and immediately feeds it back
// into the current frame via push.
func (p *IterativeParser) descendOrLeaf(f *frame) (bool, value.Value, error) {
	switch p.cur.Kind {
	case token.LeftBrace:
		p.stack = append(p.stack, &frame{kind: frameObject, objVals: map[string]value.Value{}})
		p.advance()
		p.skipInsignificant()
		return false, value.Value{}, nil
	case token.LeftBracket:
		p.stack = append(p.stack, &frame{kind: frameArray})
		p.advance()
		p.skipInsignificant()
		return false, value.Value{}, nil
	default:
		v, err := p.parseScalar()
		if err != nil {
			return false, value.Value{}, err
		}
		p.push(f, v)
		return false, value.Value{}, nil
	}
}

func (p *IterativeParser) parseScalar() (value.Value, error) {
	switch p.cur.Kind {
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
