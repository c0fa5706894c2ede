package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/value"
)

// mustAgree parses input with both implementations and asserts they
// either both fail or both succeed with structurally equal trees. This is
// the property test §9 calls for: "a property test that runs both on
// random inputs and asserts equality is cheap and catches divergence."
func mustAgree(t *testing.T, input string, opts options.ParserOptions) value.Value {
	t.Helper()
	rv, rerr := New(input, opts).Parse()
	iv, ierr := NewIterative(input, opts).Parse()

	if rerr != nil || ierr != nil {
		require.Error(t, rerr, "recursive parser should also have failed on %q", input)
		require.Error(t, ierr, "iterative parser should also have failed on %q", input)
		return value.Value{}
	}
	require.NoError(t, ierr)
	require.True(t, rv.Equals(iv), "recursive and iterative parsers disagree on %q:\n  recursive=%s\n  iterative=%s",
		input, rv.Inspect(), iv.Inspect())
	return rv
}

func TestAgreeOnStrictInputs(t *testing.T) {
	inputs := []string{
		`{"a":1}`,
		`[1,2,3]`,
		`{"a":[1,2,{"b":true}],"c":null}`,
		`""`,
		`"hello\nworld"`,
		`[[[[[1]]]]]`,
		`{}`,
		`[]`,
		`-0.5e10`,
	}
	for _, input := range inputs {
		mustAgree(t, input, options.Strict())
	}
}

func TestAgreeOnForgivingInputs(t *testing.T) {
	inputs := []string{
		`{a:1, b:2,}`,
		"a:1\nb:2",
		`[1,,3]`,
		`{'k':'v'}`,
		"// c\n{a:1}",
		`/* block */ [1, 2,]`,
		`0xFF`,
		`1_000`,
		`.5`,
		`1.`,
		`,1`,
		`1,2,3`,
	}
	for _, input := range inputs {
		mustAgree(t, input, options.Forgiving())
	}
}

func TestAgreeOnDeeplyNestedArrays(t *testing.T) {
	depth := 200
	input := ""
	for i := 0; i < depth; i++ {
		input += "["
	}
	input += "1"
	for i := 0; i < depth; i++ {
		input += "]"
	}
	opts := options.Forgiving()
	opts.MaxDepth = depth + 10
	mustAgree(t, input, opts)
}

func TestAgreeOnDepthLimitFailures(t *testing.T) {
	opts := options.Forgiving()
	opts.MaxDepth = 2
	mustAgree(t, "{a: {b: {c: 1}}}", opts)
}

func TestAgreeOnMalformedInputs(t *testing.T) {
	inputs := []string{
		`{"a":}`,
		`[1,`,
		`{`,
		`"unterminated`,
		`[1 2]`,
		`{"a" "b"}`,
		`@`,
	}
	for _, input := range inputs {
		mustAgree(t, input, options.Forgiving())
	}
}

func TestAgreeFuzzLike(t *testing.T) {
	fragments := []string{
		"{", "}", "[", "]", ":", ",", "1", "-1", "1.5", `"s"`, "'s'",
		"true", "false", "null", "key", "\n", " ", "//c\n", "/*c*/",
	}
	n := 0
	for i := 0; i < len(fragments); i++ {
		for j := 0; j < len(fragments); j++ {
			for k := 0; k < len(fragments); k++ {
				input := fragments[i] + fragments[j] + fragments[k]
				mustAgree(t, input, options.Forgiving())
				n++
			}
		}
	}
	t.Logf("checked %d generated fragments", n)
}
