package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/token"
)

func drainKinds(t *testing.T, l *Incremental) []token.Kind {
	t.Helper()
	var kinds []token.Kind
	for l.HasTokens() {
		tok, ok := l.NextToken()
		require.True(t, ok)
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

// Grounded on simple_lexer.rs's test_simple_tokens.
func TestIncrementalSimpleTokens(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString(`{"key": true}`))
	require.NoError(t, l.Finish())

	assert.Equal(t, []token.Kind{
		token.LeftBrace, token.String, token.Colon, token.True, token.RightBrace,
	}, drainKinds(t, l))
}

// Grounded on simple_lexer.rs's test_incremental_string: a token only
// becomes available once its closing quote has been fed.
func TestIncrementalStringAcrossFeedCalls(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString(`"hel`))
	assert.False(t, l.HasTokens())

	require.NoError(t, l.FeedString(`lo"`))
	assert.True(t, l.HasTokens())

	tok, ok := l.NextToken()
	require.True(t, ok)
	assert.Equal(t, token.String, tok.Kind)
	assert.Equal(t, `"hello"`, tok.Span.Text(`"hello"`))
}

// Grounded on simple_lexer.rs's test_numbers.
func TestIncrementalNumber(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("123.45"))
	require.NoError(t, l.Finish())

	tok, ok := l.NextToken()
	require.True(t, ok)
	assert.Equal(t, token.Number, tok.Kind)
}

// Grounded on simple_lexer.rs's test_keywords.
func TestIncrementalKeywords(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("true false null"))
	require.NoError(t, l.Finish())

	assert.Equal(t, []token.Kind{token.True, token.False, token.Null}, drainKinds(t, l))
}

func TestIncrementalNewlineAlwaysEmittedRegardlessOfNewlineAsComma(t *testing.T) {
	opts := options.ParserOptions{}
	l := NewIncremental(opts)
	require.NoError(t, l.FeedString("1\n2"))
	require.NoError(t, l.Finish())

	assert.Equal(t, []token.Kind{token.Number, token.Newline, token.Number}, drainKinds(t, l))
}

func TestIncrementalByteAtATime(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	input := `[1, "a", null]`
	for i := 0; i < len(input); i++ {
		require.NoError(t, l.FeedByte(input[i]))
	}
	require.NoError(t, l.Finish())

	assert.Equal(t, []token.Kind{
		token.LeftBracket, token.Number, token.Comma, token.String, token.Comma, token.Null, token.RightBracket,
	}, drainKinds(t, l))
}

func TestIncrementalLineComment(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("// a comment\n1"))
	require.NoError(t, l.Finish())

	assert.Equal(t, []token.Kind{token.SingleLineComment, token.Newline, token.Number}, drainKinds(t, l))
}

func TestIncrementalBlockComment(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("/* a\nb */1"))
	require.NoError(t, l.Finish())

	assert.Equal(t, []token.Kind{token.MultiLineComment, token.Number}, drainKinds(t, l))
}

func TestIncrementalUnterminatedBlockCommentErrorsOnFinish(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("/* never closed"))
	assert.Error(t, l.Finish())
}

func TestIncrementalUnterminatedStringErrorsOnFinish(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString(`"never closed`))
	assert.Error(t, l.Finish())
}

func TestIncrementalTrailingIdentifierFlushedOnFinish(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("foo"))
	assert.False(t, l.HasTokens())
	require.NoError(t, l.Finish())

	tok, ok := l.NextToken()
	require.True(t, ok)
	assert.Equal(t, token.UnquotedString, tok.Kind)
}

func TestIncrementalSingleQuoteRejectedWithoutForgivingFlags(t *testing.T) {
	l := NewIncremental(options.Strict())
	err := l.FeedString(`'hi'`)
	assert.Error(t, err)
}

func TestIncrementalSingleQuoteAcceptedUnderAnyForgivingFlag(t *testing.T) {
	// Matches Lexer.nextImpl: single quotes lex once the lexer is in
	// Forgiving mode for any reason, not gated specifically on
	// AllowSingleQuotes — decodeString enforces that flag downstream.
	l := NewIncremental(options.ParserOptions{AllowComments: true})
	require.NoError(t, l.FeedString(`'hi'`))
	require.NoError(t, l.Finish())
	assert.Equal(t, []token.Kind{token.String}, drainKinds(t, l))
}

func TestIncrementalHexNumberLexedPermissivelyRegardlessOfFlag(t *testing.T) {
	// The incremental lexer, like Lexer.lexNumber, always recognizes the
	// widest number shape; parser.decodeNumber is where
	// AllowAlternateNumberBases is actually enforced.
	l := NewIncremental(options.ParserOptions{})
	require.NoError(t, l.FeedString("0xFF"))
	require.NoError(t, l.Finish())
	assert.Equal(t, []token.Kind{token.Number}, drainKinds(t, l))
}

func TestIncrementalDecimalDoesNotSwallowTrailingHexLookingLetters(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("123abc"))
	require.NoError(t, l.Finish())

	assert.Equal(t, []token.Kind{token.Number, token.UnquotedString}, drainKinds(t, l))
}

func TestIncrementalFeedAfterFinishIsInvalidChunk(t *testing.T) {
	l := NewIncremental(options.Forgiving())
	require.NoError(t, l.FeedString("1"))
	require.NoError(t, l.Finish())

	err := l.FeedString("2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E1017")
}

func TestIncrementalUnexpectedCharInNormalState(t *testing.T) {
	l := NewIncremental(options.Strict())
	err := l.FeedString("@")
	assert.Error(t, err)
}
