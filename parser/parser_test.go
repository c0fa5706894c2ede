package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/value"
)

func parseForgiving(t *testing.T, input string) value.Value {
	t.Helper()
	v, err := New(input, options.Forgiving()).Parse()
	require.NoError(t, err)
	return v
}

func TestScenarioStrictObject(t *testing.T) {
	v, err := New(`{"a":1}`, options.Strict()).Parse()
	require.NoError(t, err)
	require.Equal(t, value.Object, v.Kind())
	got, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), got.Int())
}

func TestScenarioTrailingCommaAndUnquotedKeys(t *testing.T) {
	v := parseForgiving(t, `{a:1, b:2,}`)
	require.Equal(t, value.Object, v.Kind())
	a, _ := v.Get("a")
	b, _ := v.Get("b")
	assert.Equal(t, int64(1), a.Int())
	assert.Equal(t, int64(2), b.Int())
}

func TestScenarioImplicitTopLevelObjectViaNewline(t *testing.T) {
	v := parseForgiving(t, "a:1\nb:2")
	require.Equal(t, value.Object, v.Kind())
	a, _ := v.Get("a")
	b, _ := v.Get("b")
	assert.Equal(t, int64(1), a.Int())
	assert.Equal(t, int64(2), b.Int())
}

func TestScenarioConsecutiveSeparatorsInsertNull(t *testing.T) {
	v := parseForgiving(t, "[1,,3]")
	require.Equal(t, value.Array, v.Kind())
	elems := v.Elements()
	require.Len(t, elems, 3)
	assert.Equal(t, int64(1), elems[0].Int())
	assert.True(t, elems[1].IsNull())
	assert.Equal(t, int64(3), elems[2].Int())
}

func TestScenarioUnclosedObjectFailsWithoutRepair(t *testing.T) {
	_, err := New(`{"name":"test"`, options.Forgiving()).Parse()
	assert.Error(t, err)
}

func TestScenarioSingleQuotedStrings(t *testing.T) {
	v := parseForgiving(t, `{'k':'v'}`)
	got, ok := v.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got.Str())
}

func TestScenarioCommentsRejectedInStrictMode(t *testing.T) {
	_, err := New("// c\n{a:1}", options.Strict()).Parse()
	assert.Error(t, err)
}

func TestScenarioDepthLimit(t *testing.T) {
	opts := options.Forgiving()
	opts.MaxDepth = 2
	_, err := New("{a: {b: {c: 1}}}", opts).Parse()
	assert.Error(t, err)
}

func TestScenarioEscapedNewlineDecoded(t *testing.T) {
	v := parseForgiving(t, `"hello\nworld"`)
	assert.Equal(t, "hello\nworld", v.Str())
}

func TestScenarioHexNumber(t *testing.T) {
	v := parseForgiving(t, "0xFF")
	assert.Equal(t, value.Integer, v.Kind())
	assert.Equal(t, int64(255), v.Int())
}

func TestScenarioOctalAndBinary(t *testing.T) {
	o := parseForgiving(t, "0o17")
	assert.Equal(t, int64(15), o.Int())
	b := parseForgiving(t, "0b101")
	assert.Equal(t, int64(5), b.Int())
}

func TestScenarioAlternateNumberBasesRejectedWithoutTheirOwnFlag(t *testing.T) {
	// AllowComments alone must not smuggle in alternate-base literals:
	// each forgiving feature is gated on its own option.
	opts := options.ParserOptions{AllowComments: true}
	_, err := New("0xFF", opts).Parse()
	assert.Error(t, err)

	_, err = NewIterative("0xFF", opts).Parse()
	assert.Error(t, err)
}

func TestScenarioUnderscoreSeparatorsRejectedWithoutFlag(t *testing.T) {
	opts := options.ParserOptions{AllowComments: true}
	_, err := New("1_000", opts).Parse()
	assert.Error(t, err)
}

func TestScenarioAlternateNumberBasesAcceptedWithFlag(t *testing.T) {
	opts := options.ParserOptions{AllowAlternateNumberBases: true}
	v, err := New("0xFF", opts).Parse()
	require.NoError(t, err)
	assert.Equal(t, int64(255), v.Int())
}

func TestScenarioUnderscoreSeparators(t *testing.T) {
	v := parseForgiving(t, "1_000_000")
	assert.Equal(t, int64(1000000), v.Int())
}

func TestScenarioTrailingDotYieldsInteger(t *testing.T) {
	v := parseForgiving(t, "1.")
	assert.Equal(t, value.Integer, v.Kind())
	assert.Equal(t, int64(1), v.Int())
}

func TestScenarioLeadingDotFloat(t *testing.T) {
	v := parseForgiving(t, ".5")
	assert.Equal(t, value.Float, v.Kind())
	assert.InDelta(t, 0.5, v.Float64(), 1e-9)
}

func TestScenarioDuplicateKeyLastWins(t *testing.T) {
	v := parseForgiving(t, `{"a":1,"a":2}`)
	got, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Int())
	assert.Len(t, v.Keys(), 1)
}

func TestScenarioNestedStructures(t *testing.T) {
	v := parseForgiving(t, `{"list":[1,2,{"nested":true}],"n":null}`)
	list, ok := v.Get("list")
	require.True(t, ok)
	require.Len(t, list.Elements(), 3)
	nested := list.Elements()[2]
	flag, ok := nested.Get("nested")
	require.True(t, ok)
	assert.True(t, flag.Bool())
	n, ok := v.Get("n")
	require.True(t, ok)
	assert.True(t, n.IsNull())
}

func TestScenarioUnicodeEscapeSurrogatePair(t *testing.T) {
	v := parseForgiving(t, "\"\\uD83D\\uDE00\"")
	assert.Equal(t, "\U0001F600", v.Str())
}

func TestScenarioUnicodeEscapeBMP(t *testing.T) {
	v := parseForgiving(t, "\"\\u00e9\"")
	assert.Equal(t, "é", v.Str())
}

func TestScenarioUnpairedHighSurrogateEmittedAsIs(t *testing.T) {
	v := parseForgiving(t, `"\uD83D"`)
	assert.Equal(t, string(rune(0xD83D)), v.Str())
}

func TestScenarioTrailingCommaRejectedByDefault(t *testing.T) {
	opts := options.Forgiving()
	opts.AllowTrailingCommas = false
	_, err := New(`[1,2,]`, opts).Parse()
	assert.Error(t, err)
}

func TestScenarioUnquotedStringAsValueRequiresForgiving(t *testing.T) {
	_, err := New(`unquoted`, options.Strict()).Parse()
	assert.Error(t, err)
}
