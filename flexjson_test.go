package flexjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/value"
)

func TestParseForgivingDefault(t *testing.T) {
	v, err := Parse(`{a: 1, b: [1,2,3,]}`)
	require.NoError(t, err)
	a, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), a.Int())
}

func TestParseWithOptionsStrictRejectsComments(t *testing.T) {
	_, err := ParseWithOptions("// c\n{}", options.Strict())
	assert.Error(t, err)
}

func TestParseWithFallbackFastTier(t *testing.T) {
	res := ParseWithFallback(`{"a":1}`, options.Forgiving())
	assert.Equal(t, TierFast, res.Tier)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Repairs)
}

func TestParseWithFallbackForgivingTier(t *testing.T) {
	res := ParseWithFallback(`{a: 1,}`, options.Forgiving())
	assert.Equal(t, TierForgiving, res.Tier)
	assert.Empty(t, res.Errors)
}

func TestParseWithFallbackRepairTier(t *testing.T) {
	opts := options.WithRepair(options.Forgiving())
	res := ParseWithFallback(`{"name":"test"`, opts)
	assert.Equal(t, TierRepair, res.Tier)
	assert.Empty(t, res.Errors)
	assert.NotEmpty(t, res.Repairs)
	got, ok := res.Value.Get("name")
	require.True(t, ok)
	assert.Equal(t, "test", got.Str())
}

func TestParseWithFallbackTotalFailureWithoutRepair(t *testing.T) {
	res := ParseWithFallback(`{"name":`, options.Forgiving())
	assert.NotEqual(t, TierRepair, res.Tier)
	assert.NotEmpty(t, res.Errors)
	assert.True(t, res.Value.IsNull())
}

func TestParseWithDetailedRepairTrackingForcesRepairTier(t *testing.T) {
	res := ParseWithDetailedRepairTracking(`{"a":1}`, options.Forgiving())
	assert.Equal(t, TierRepair, res.Tier)
}

func TestTieredResultRepairsEmptyIffNotRepairTier(t *testing.T) {
	fast := ParseWithFallback(`1`, options.Forgiving())
	assert.Empty(t, fast.Repairs)

	opts := options.WithRepair(options.Forgiving())
	repaired := ParseWithFallback(`{'a': 1`, opts)
	if repaired.Tier == TierRepair {
		assert.NotEmpty(t, repaired.Repairs)
	}
}

func TestParseWithFallbackValueKindOnFailureIsNull(t *testing.T) {
	res := ParseWithFallback(`@@@`, options.Forgiving())
	assert.Equal(t, value.Null, res.Value.Kind())
}

func TestAllTierErrorsIncludesEveryFailedTier(t *testing.T) {
	res := ParseWithFallback(`@@@`, options.Forgiving())
	assert.NotEmpty(t, res.Errors)
	all := res.AllTierErrors()
	require.Len(t, all, 2, "fast and forgiving tiers should both have failed and both be retained")
}

func TestAllTierErrorsRepairFailureKeepsEarlierTiers(t *testing.T) {
	opts := options.WithRepair(options.Forgiving())
	res := ParseWithFallback(`@@@`, opts)
	all := res.AllTierErrors()
	assert.GreaterOrEqual(t, len(all), 2, "fast/forgiving failures must survive even when the repair tier also fails")
}

func TestAllTierErrorsEmptyOnSuccess(t *testing.T) {
	res := ParseWithFallback(`{"a":1}`, options.Forgiving())
	assert.Empty(t, res.AllTierErrors())
}
