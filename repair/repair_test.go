package repair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/parser"
)

func TestRepairSingleQuotes(t *testing.T) {
	r := New(0.7, 100, 100)
	res, err := r.Repair(`{'name': 'John', 'age': 30}`)
	require.NoError(t, err)
	assert.Contains(t, res.Repaired, `"name"`)
	assert.Contains(t, res.Repaired, `"John"`)
	assert.NotContains(t, res.Repaired, "'")
	assert.NotEmpty(t, res.Actions)
}

func TestRepairTypeCoercion(t *testing.T) {
	r := New(0.7, 100, 100)
	res, err := r.Repair(`{"count": "42", "price": "19.99"}`)
	require.NoError(t, err)
	assert.Contains(t, res.Repaired, `: 42`)
	assert.Contains(t, res.Repaired, `: 19.99`)
}

func TestRepairMissingClosingBrace(t *testing.T) {
	r := New(0.7, 100, 100)
	res, err := r.Repair(`{"name":"test"`)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"test"}`, res.Repaired)
	require.Len(t, res.Actions, 1)
	assert.Equal(t, InsertBracket, res.Actions[0].Kind)
}

func TestRepairUnquotedKeys(t *testing.T) {
	r := New(0.7, 100, 100)
	res, err := r.Repair(`{name: "value"}`)
	require.NoError(t, err)
	assert.Contains(t, res.Repaired, `"name"`)
}

func TestRepairPreviewModeDoesNotMutate(t *testing.T) {
	r := New(0.7, 100, 100)
	preview := r.Preview(`{'test': true}`)
	assert.Equal(t, `{'test': true}`, preview.Original())
	assert.Equal(t, `{'test': true}`, preview.Repaired)
	assert.NotEmpty(t, preview.Actions)
	assert.Equal(t, 0, r.History().Len())
}

func TestRepairRecordsHistory(t *testing.T) {
	r := New(0.7, 100, 100)
	_, err := r.Repair(`{'test': 123}`)
	require.NoError(t, err)
	require.Equal(t, 1, r.History().Len())
	entry := r.History().Entries()[0]
	assert.Equal(t, `{'test': 123}`, entry.Original)
	assert.True(t, entry.Success)
}

func TestRepairHistoryEviction(t *testing.T) {
	r := New(0.7, 100, 3)
	for i := 0; i < 5; i++ {
		_, err := r.Repair(`{'k': 1}`)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, r.History().Len())
}

func TestRepairExceedsMaxRepairs(t *testing.T) {
	r := New(0.1, 1, 100)
	_, err := r.Repair(`{'a':'b', 'c':'d', 'e':'f'}`)
	assert.Error(t, err)
}

// TestRepairRoundTripsCleanly is the round-trip property (spec invariant
// 7): a repaired buffer must re-parse under the forgiving parser without
// raising any further repair.
func TestRepairRoundTripsCleanly(t *testing.T) {
	inputs := []string{
		`{"name":"test"`,
		`{'a': 1, 'b': 2}`,
		`{"a": "1", "b": "2.5"}`,
		`{name: 1}`,
	}
	r := New(0.7, 100, 100)
	for _, input := range inputs {
		res, err := r.Repair(input)
		require.NoError(t, err, "input %q", input)
		_, perr := parser.New(res.Repaired, options.Forgiving()).Parse()
		assert.NoError(t, perr, "repaired %q (from %q) failed to reparse", res.Repaired, input)
	}
}

func TestConfidenceThresholdFiltersLowConfidenceActions(t *testing.T) {
	r := New(0.95, 100, 100)
	res, err := r.Repair(`{name: 1}`)
	require.NoError(t, err)
	assert.Empty(t, res.Actions)
}
