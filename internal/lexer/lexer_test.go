package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexjson/flexjson/token"
)

func collectKinds(t *testing.T, l *Lexer) []token.Kind {
	t.Helper()
	var kinds []token.Kind
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		kinds = append(kinds, tok.Kind)
		if tok.IsEof() {
			return kinds
		}
	}
}

func TestStrictBasic(t *testing.T) {
	l := New(`{"key": 123}`, Strict)
	kinds := collectKinds(t, l)
	assert.Equal(t, []token.Kind{
		token.LeftBrace, token.String, token.Colon, token.Number, token.RightBrace, token.Eof,
	}, kinds)
}

func TestStrictRejectsSingleQuote(t *testing.T) {
	l := New(`'hi'`, Strict)
	_, err := l.Next()
	assert.Error(t, err)
}

func TestStrictRejectsComment(t *testing.T) {
	l := New("// hi\n1", Strict)
	_, err := l.Next()
	assert.Error(t, err)
}

func TestForgivingComments(t *testing.T) {
	l := New("// comment\n{/* multi\nline */}", Forgiving)
	kinds := collectKinds(t, l)
	assert.Equal(t, []token.Kind{
		token.SingleLineComment, token.Newline, token.LeftBrace, token.MultiLineComment, token.RightBrace, token.Eof,
	}, kinds)
}

func TestForgivingUnquotedKey(t *testing.T) {
	l := New("{key: true}", Forgiving)
	kinds := collectKinds(t, l)
	assert.Equal(t, []token.Kind{
		token.LeftBrace, token.UnquotedString, token.Colon, token.True, token.RightBrace, token.Eof,
	}, kinds)
}

func TestForgivingSingleQuotedString(t *testing.T) {
	l := New(`'hello'`, Forgiving)
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.String, tok.Kind)
	assert.Equal(t, `'hello'`, tok.Span.Text(`'hello'`))
}

func TestNewlineIsItsOwnToken(t *testing.T) {
	l := New("1\n2", Forgiving)
	kinds := collectKinds(t, l)
	assert.Equal(t, []token.Kind{token.Number, token.Newline, token.Number, token.Eof}, kinds)
}

func TestNumberVariants(t *testing.T) {
	for _, input := range []string{"123", "-123", "+123", "1.5", ".5", "1.", "1e10", "1E-10", "0x1F", "0o17", "0b101", "1_000"} {
		l := New(input, Forgiving)
		tok, err := l.Next()
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, token.Number, tok.Kind, "input %q", input)
		eof, err := l.Next()
		require.NoError(t, err)
		assert.True(t, eof.IsEof())
	}
}

func TestInvalidNumber(t *testing.T) {
	for _, input := range []string{"1..1", "..1", "0x", "0o8", "0b2"} {
		l := New(input, Forgiving)
		_, err := l.Next()
		assert.Error(t, err, "input %q", input)
	}
}

func TestUnterminatedString(t *testing.T) {
	l := New(`"unterminated`, Strict)
	_, err := l.Next()
	assert.Error(t, err)
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := New("/* never closes", Forgiving)
	_, err := l.Next()
	assert.Error(t, err)
}

func TestPeekDoesNotAdvance(t *testing.T) {
	l := New("[1,2]", Strict)
	first, err := l.Peek()
	require.NoError(t, err)
	assert.Equal(t, token.LeftBracket, first.Kind)
	second, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	next, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.Number, next.Kind)
}

func TestEscapedQuoteDoesNotTerminateString(t *testing.T) {
	l := New(`"a\"b"`, Strict)
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.String, tok.Kind)
	assert.Equal(t, len(`"a\"b"`), tok.Span.End)
}
