package lexer

import (
	"fmt"

	"github.com/flexjson/flexjson/ferr"
	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/token"
)

// streamState is the incremental lexer's state machine, grounded on
// original_source/crates/core/src/streaming/simple_lexer.rs's LexerState
// enum: Normal plus one state per in-progress construct.
type streamState uint8

const (
	streamNormal streamState = iota
	streamInString
	streamInNumber
	streamInIdentifier
	streamInSingleLineComment
	streamInMultiLineComment
	streamPotentialComment // just saw '/', awaiting '/' or '*'
)

// Incremental is the streaming counterpart to Lexer: instead of scanning a
// whole string, it accepts input one chunk at a time via Feed and emits
// tokens onto an internal queue as soon as a full token boundary is
// reached, matching SYSTEM OVERVIEW §4.C's "equivalent forms" contract.
// Unlike Lexer, which takes a single strict/forgiving Mode, Incremental
// reads the individual ParserOptions flags directly: there is no single
// point where "the whole input" is known, so each construct is gated the
// same way Lexer's byte-level dispatch gates it (quotes/comments on the
// composite forgiving() check, numbers and identifiers permissively,
// deferring the per-flag decision — AllowUnquotedKeys,
// AllowAlternateNumberBases — to the parser's decode functions, exactly
// as Lexer does).
//
// Incremental is not safe for concurrent use; one owner feeds it at a
// time, matching Lexer's own concurrency contract.
type Incremental struct {
	opts options.ParserOptions

	buf      []byte
	state    streamState
	pending  []token.Token
	finished bool

	// startPos is the byte offset where the in-progress construct began.
	startPos int

	// InString-only.
	quoteChar byte
	escape    bool

	// InMultiLineComment-only.
	starSeen bool
}

// NewIncremental creates an Incremental lexer configured by opts.
func NewIncremental(opts options.ParserOptions) *Incremental {
	return &Incremental{opts: opts}
}

func (l *Incremental) forgiving() bool {
	return l.opts.AllowComments || l.opts.AllowUnquotedKeys ||
		l.opts.AllowSingleQuotes || l.opts.AllowAlternateNumberBases
}

func (l *Incremental) text() string {
	return string(l.buf)
}

// Feed appends chunk to the input stream and processes every byte in it,
// emitting any tokens that become complete onto the pending queue. chunk
// boundaries carry no meaning to the state machine — a token may span any
// number of Feed calls — except that Feed after Finish is rejected: the
// stream is logically closed by then, so any further chunk cannot belong
// to it.
func (l *Incremental) Feed(chunk []byte) error {
	for _, b := range chunk {
		if err := l.FeedByte(b); err != nil {
			return err
		}
	}
	return nil
}

// FeedString is a convenience wrapper around Feed for string input.
func (l *Incremental) FeedString(s string) error {
	return l.Feed([]byte(s))
}

// FeedByte feeds a single byte, the unit Feed and FeedString build on.
func (l *Incremental) FeedByte(b byte) error {
	if l.finished {
		return ferr.InvalidChunk("Feed called after Finish; the incremental lexer's input stream is already closed")
	}
	l.buf = append(l.buf, b)
	return l.processByte(b, len(l.buf)-1)
}

// NextToken dequeues the next complete token, if one is available.
func (l *Incremental) NextToken() (token.Token, bool) {
	if len(l.pending) == 0 {
		return token.Token{}, false
	}
	tok := l.pending[0]
	l.pending = l.pending[1:]
	return tok, true
}

// HasTokens reports whether NextToken would return a token right now.
func (l *Incremental) HasTokens() bool {
	return len(l.pending) > 0
}

// Finish flushes any state still open at end-of-input: an in-progress
// number or identifier is a well-formed trailing token and is emitted; an
// open string or block comment has no valid end and raises an error.
// Finish marks the stream closed — further Feed calls return
// ferr.InvalidChunk.
func (l *Incremental) Finish() error {
	defer func() { l.finished = true }()

	switch l.state {
	case streamNormal:
		return nil
	case streamInString:
		return ferr.UnterminatedString(l.startPos, l.text())
	case streamInNumber:
		l.emit(token.Number, l.startPos, len(l.buf))
		l.state = streamNormal
		return nil
	case streamInIdentifier:
		l.emit(l.identifierKind(l.buf[l.startPos:]), l.startPos, len(l.buf))
		l.state = streamNormal
		return nil
	case streamInSingleLineComment:
		l.emit(token.SingleLineComment, l.startPos, len(l.buf))
		l.state = streamNormal
		return nil
	case streamInMultiLineComment:
		return ferr.Custom(fmt.Sprintf("unterminated block comment starting at byte offset %d", l.startPos))
	case streamPotentialComment:
		return ferr.UnexpectedChar('/', l.startPos, l.text())
	default:
		return nil
	}
}

func (l *Incremental) emit(kind token.Kind, start, end int) {
	l.pending = append(l.pending, token.Token{Kind: kind, Span: token.Span{Start: start, End: end}})
}

func (l *Incremental) identifierKind(content []byte) token.Kind {
	switch string(content) {
	case "true":
		return token.True
	case "false":
		return token.False
	case "null":
		return token.Null
	default:
		return token.UnquotedString
	}
}

// processByte dispatches the byte at pos (already appended to l.buf) to
// the handler for the current state. Handlers that determine the byte
// belongs to the NEXT token (e.g. a number's terminator) reprocess it by
// calling processByte again directly at the same pos, after switching
// state to streamNormal — no re-append, no position bookkeeping trick
// needed, unlike the Rust source's feed_char/position dance.
func (l *Incremental) processByte(b byte, pos int) error {
	switch l.state {
	case streamNormal:
		return l.processNormal(b, pos)
	case streamInString:
		return l.processString(b, pos)
	case streamInNumber:
		return l.processNumber(b, pos)
	case streamInIdentifier:
		return l.processIdentifier(b, pos)
	case streamInSingleLineComment:
		return l.processSingleLineComment(b, pos)
	case streamInMultiLineComment:
		return l.processMultiLineComment(b, pos)
	case streamPotentialComment:
		return l.processPotentialComment(b, pos)
	default:
		return nil
	}
}

func (l *Incremental) processNormal(b byte, pos int) error {
	switch b {
	case ' ', '\t', '\r':
		return nil
	case '\n':
		// Always emitted, regardless of NewlineAsComma: "the lexer emits
		// always; parser decides" (spec.md §4.C), same as Lexer.Next's
		// Newline handling — a deliberate correction of
		// simple_lexer.rs's process_normal, which only emits Newline
		// when newline_as_comma is set, so that the two lexer forms
		// agree on their token stream independent of that option.
		l.emit(token.Newline, pos, pos+1)
		return nil
	case '{':
		l.emit(token.LeftBrace, pos, pos+1)
		return nil
	case '}':
		l.emit(token.RightBrace, pos, pos+1)
		return nil
	case '[':
		l.emit(token.LeftBracket, pos, pos+1)
		return nil
	case ']':
		l.emit(token.RightBracket, pos, pos+1)
		return nil
	case ':':
		l.emit(token.Colon, pos, pos+1)
		return nil
	case ',':
		l.emit(token.Comma, pos, pos+1)
		return nil
	case '"':
		l.state = streamInString
		l.quoteChar = '"'
		l.escape = false
		l.startPos = pos
		return nil
	case '\'':
		if !l.forgiving() {
			return ferr.UnexpectedChar('\'', pos, l.text())
		}
		l.state = streamInString
		l.quoteChar = '\''
		l.escape = false
		l.startPos = pos
		return nil
	case '/':
		if !l.forgiving() {
			return ferr.UnexpectedChar('/', pos, l.text())
		}
		l.state = streamPotentialComment
		l.startPos = pos
		return nil
	case '#':
		if !l.forgiving() {
			return ferr.UnexpectedChar('#', pos, l.text())
		}
		l.state = streamInSingleLineComment
		l.startPos = pos
		return nil
	case '-', '+', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		// Entered unconditionally in every mode, matching Lexer.nextImpl:
		// the lexer always recognizes the widest number shape, and
		// AllowAlternateNumberBases is enforced downstream in
		// parser.decodeNumber, not here.
		l.state = streamInNumber
		l.startPos = pos
		return nil
	default:
		if isIdentStart(b) {
			l.state = streamInIdentifier
			l.startPos = pos
			return nil
		}
		if b >= 0x80 {
			return ferr.InvalidUtf8(pos, l.text())
		}
		return ferr.UnexpectedChar(rune(b), pos, l.text())
	}
}

func (l *Incremental) processString(b byte, pos int) error {
	switch {
	case l.escape:
		l.escape = false
		return nil
	case b == '\\':
		l.escape = true
		return nil
	case b == l.quoteChar:
		l.emit(token.String, l.startPos, pos+1)
		l.state = streamNormal
		return nil
	case b == '\n':
		return ferr.UnterminatedString(l.startPos, l.text())
	default:
		return nil
	}
}

// numberContinues reports whether b extends the in-progress number whose
// bytes so far (not including b) are content. Hex letters are only
// accepted once content itself is a bare "0x"/"0X" (or signed) prefix —
// otherwise "123abc" would wrongly swallow "abc" as hex digits. Base
// markers (x/o/b) are only accepted as the byte immediately following a
// lone leading zero. Everything else defers to parser.decodeNumber, which
// will reject a malformed shape (e.g. "1+2", "0x" with no digits) that
// this permissive scan let through — the same lex-permissive,
// parse-strict split Lexer.lexNumber documents.
func numberContinues(content []byte, b byte) bool {
	if isDigit(b) {
		return true
	}
	switch b {
	case '.', 'e', 'E', '+', '-', '_':
		return true
	}
	if isBaseMarker(content, b) {
		return true
	}
	if (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') {
		return hasHexPrefix(content)
	}
	return false
}

func signPrefixLen(content []byte) int {
	if len(content) > 0 && (content[0] == '+' || content[0] == '-') {
		return 1
	}
	return 0
}

func isBaseMarker(content []byte, b byte) bool {
	switch b {
	case 'x', 'X', 'o', 'O', 'b', 'B':
	default:
		return false
	}
	i := signPrefixLen(content)
	return len(content) == i+1 && content[i] == '0'
}

func hasHexPrefix(content []byte) bool {
	i := signPrefixLen(content)
	return len(content) > i+1 && content[i] == '0' && (content[i+1] == 'x' || content[i+1] == 'X')
}

func (l *Incremental) processNumber(b byte, pos int) error {
	content := l.buf[l.startPos:pos]
	if numberContinues(content, b) {
		return nil
	}
	l.emit(token.Number, l.startPos, pos)
	l.state = streamNormal
	return l.processByte(b, pos)
}

func (l *Incremental) processIdentifier(b byte, pos int) error {
	if isIdentCont(b) {
		return nil
	}
	l.emit(l.identifierKind(l.buf[l.startPos:pos]), l.startPos, pos)
	l.state = streamNormal
	return l.processByte(b, pos)
}

func (l *Incremental) processSingleLineComment(b byte, pos int) error {
	if b != '\n' {
		return nil
	}
	l.emit(token.SingleLineComment, l.startPos, pos)
	l.state = streamNormal
	return l.processByte(b, pos)
}

func (l *Incremental) processMultiLineComment(b byte, pos int) error {
	if l.starSeen && b == '/' {
		l.emit(token.MultiLineComment, l.startPos, pos+1)
		l.state = streamNormal
		l.starSeen = false
		return nil
	}
	l.starSeen = b == '*'
	return nil
}

func (l *Incremental) processPotentialComment(b byte, pos int) error {
	switch b {
	case '/':
		l.state = streamInSingleLineComment
		return nil
	case '*':
		l.state = streamInMultiLineComment
		l.starSeen = false
		return nil
	default:
		return ferr.UnexpectedChar('/', l.startPos, l.text())
	}
}
