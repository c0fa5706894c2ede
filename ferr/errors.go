package ferr

import (
	"fmt"

	"github.com/flexjson/flexjson/token"
)

// Kind groups errors into the five taxonomy categories the spec defines:
// lexical, syntactic, structural, repair, and other.
type Kind string

const (
	KindLexical   Kind = "lexical"
	KindSyntactic Kind = "syntactic"
	KindStructural Kind = "structural"
	KindRepair    Kind = "repair"
	KindOther     Kind = "other"
)

var codeKinds = map[Code]Kind{
	EUnexpectedChar:     KindLexical,
	EInvalidNumber:      KindLexical,
	EInvalidEscape:      KindLexical,
	EInvalidUnicode:     KindLexical,
	EUnterminatedString: KindLexical,
	EInvalidUtf8:        KindLexical,
	EUnexpectedEof:      KindSyntactic,
	ETrailingComma:      KindSyntactic,
	EExpected:           KindSyntactic,
	EBracketMismatch:    KindSyntactic,
	EUnbalancedBrackets: KindSyntactic,
	EDepthLimitExceeded: KindStructural,
	ERepairFailed:       KindRepair,
	EMaxRepairsExceeded: KindRepair,
	ECustom:             KindOther,
	EInvalidChunk:       KindOther,
	EWithContext:        KindOther,
}

// Error is the single error type produced anywhere in the core: the lexer,
// the parser, and the repair engine all return *Error (or wrap one via
// WithContext) rather than defining their own error types, so that a
// caller always has one shape to switch on.
type Error struct {
	Code    Code
	Pos     token.Position
	HasPos  bool
	Message string

	// Expected/Found are populated only for EExpected.
	Expected string
	Found    string

	// Ch is populated only for EUnexpectedChar.
	Ch rune

	Cause error
}

// Kind returns the taxonomy category for this error's code.
func (e *Error) Kind() Kind {
	return codeKinds[e.Code]
}

// Error implements the error interface with a one-line rendering.
func (e *Error) Error() string {
	msg := e.message()
	if e.HasPos {
		return fmt.Sprintf("[%s] %s at %s", e.Code, msg, e.Pos)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

func (e *Error) message() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Code {
	case EUnexpectedChar:
		return fmt.Sprintf("unexpected character %q", e.Ch)
	case EExpected:
		return fmt.Sprintf("expected %s but found %s", e.Expected, e.Found)
	default:
		return e.Code.Description()
	}
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

func withPos(code Code, pos int, input string) *Error {
	return &Error{Code: code, Pos: token.PositionOf(input, pos), HasPos: true}
}

// UnexpectedChar reports an unrecognized byte at pos.
func UnexpectedChar(ch rune, pos int, input string) *Error {
	e := withPos(EUnexpectedChar, pos, input)
	e.Ch = ch
	return e
}

// UnexpectedEof reports running out of input mid-construct.
func UnexpectedEof(pos int, input string) *Error {
	return withPos(EUnexpectedEof, pos, input)
}

// InvalidNumber reports a malformed number literal starting at pos.
func InvalidNumber(pos int, input string) *Error {
	return withPos(EInvalidNumber, pos, input)
}

// InvalidEscape reports a malformed `\X` escape at pos.
func InvalidEscape(pos int, input string) *Error {
	return withPos(EInvalidEscape, pos, input)
}

// InvalidUnicode reports a malformed `\uHHHH` escape at pos.
func InvalidUnicode(pos int, input string) *Error {
	return withPos(EInvalidUnicode, pos, input)
}

// UnterminatedString reports a string literal with no closing quote.
func UnterminatedString(pos int, input string) *Error {
	return withPos(EUnterminatedString, pos, input)
}

// TrailingComma reports a separator immediately before a closing bracket
// when allow_trailing_commas is off.
func TrailingComma(pos int, input string) *Error {
	return withPos(ETrailingComma, pos, input)
}

// Expected reports a token mismatch: `expected` was required, `found` was
// seen instead, at pos.
func Expected(expected, found string, pos int, input string) *Error {
	e := withPos(EExpected, pos, input)
	e.Expected = expected
	e.Found = found
	return e
}

// DepthLimitExceeded reports nesting beyond ParserOptions.MaxDepth.
func DepthLimitExceeded(pos int, input string) *Error {
	return withPos(EDepthLimitExceeded, pos, input)
}

// BracketMismatch reports a closer that doesn't match its opener.
func BracketMismatch(pos int, expected, found byte, input string) *Error {
	e := withPos(EBracketMismatch, pos, input)
	e.Message = fmt.Sprintf("expected closing %q but found %q", expected, found)
	return e
}

// InvalidUtf8 reports a byte sequence that is not valid UTF-8.
func InvalidUtf8(pos int, input string) *Error {
	return withPos(EInvalidUtf8, pos, input)
}

// Custom wraps an arbitrary message with no position.
func Custom(message string) *Error {
	return &Error{Code: ECustom, Message: message}
}

// RepairFailed reports an internal consistency failure in the repair
// engine (e.g. a proposed action's position no longer exists in the
// working buffer after earlier edits were applied). This indicates a bug
// in repair planning, not a malformed input.
func RepairFailed(message string) *Error {
	return &Error{Code: ERepairFailed, Message: message}
}

// UnbalancedBrackets reports brackets that could not be reconciled.
func UnbalancedBrackets() *Error {
	return &Error{Code: EUnbalancedBrackets}
}

// MaxRepairsExceeded reports that more repairs were proposed than
// ParserOptions.MaxRepairs allows.
func MaxRepairsExceeded() *Error {
	return &Error{Code: EMaxRepairsExceeded}
}

// InvalidChunk reports input fed to the incremental lexer after Finish
// has closed its stream.
func InvalidChunk(message string) *Error {
	return &Error{Code: EInvalidChunk, Message: message}
}

// WithContext wraps another error with an additional message, e.g. "in
// object value".
func WithContext(message string, cause error) *Error {
	return &Error{Code: EWithContext, Message: message, Cause: cause}
}
