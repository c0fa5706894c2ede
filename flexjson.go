// Package flexjson is the public entry point: a forgiving JSON parser
// with a three-tier fallback (strict → forgiving → repair) built on top
// of the internal lexer, parser, and repair packages the way the
// teacher's root package wraps its compiler/vm packages behind a small
// public surface.
package flexjson

import (
	"github.com/flexjson/flexjson/ferr"
	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/parser"
	"github.com/flexjson/flexjson/repair"
	"github.com/flexjson/flexjson/value"
)

// Tier records which pipeline stage produced a TieredResult.
type Tier string

const (
	TierFast      Tier = "fast"
	TierForgiving Tier = "forgiving"
	TierRepair    Tier = "repair"
)

// TieredResult is the outcome of ParseWithFallback: the parsed value (or
// Value{} on total failure), which tier produced it, any repairs applied,
// and the error(s) collected along the way. Errors is empty iff the call
// succeeded at the named tier.
type TieredResult struct {
	Value   value.Value
	Tier    Tier
	Repairs []repair.Action
	Errors  []*ferr.Error

	// tierErrs holds every tier's error, fast-to-last, for AllTierErrors.
	// Errors above carries only the final tier's error per spec.md §6.
	tierErrs []error
}

// AllTierErrors returns every error collected across all attempted tiers,
// in fast/forgiving/repair order, for callers debugging a total failure.
// Errors holds only the last tier's error, as spec.md §6 requires; this
// is the additive diagnostic described in SYSTEM OVERVIEW §4.G.
func (t TieredResult) AllTierErrors() []error {
	return t.tierErrs
}

// Parse parses input with the fully-forgiving default grammar and no
// repair tier: comments, trailing commas, unquoted keys, single-quoted
// strings, implicit top-level containers, newline-as-comma, and
// alternate number bases are all accepted.
func Parse(input string) (value.Value, error) {
	return ParseWithOptions(input, options.Forgiving())
}

// ParseWithOptions parses input under exactly the given options, with no
// fallback: a failure at this grammar is returned directly.
func ParseWithOptions(input string, opts options.ParserOptions) (value.Value, error) {
	opts = opts.Normalize()
	if opts.UseIterativeParser {
		return parser.NewIterative(input, opts).Parse()
	}
	return parser.New(input, opts).Parse()
}

// ParseWithFallback runs the three-tier pipeline described in SYSTEM
// OVERVIEW §4.G: a pure strict parse, then the forgiving grammar under
// opts, then (if opts.EnableRepair) the repair engine. Only the first
// successful tier's value is reported.
func ParseWithFallback(input string, opts options.ParserOptions) TieredResult {
	return newOrchestrator(opts).run(input, false)
}

// ParseWithDetailedRepairTracking forces the repair tier regardless of
// whether the fast or forgiving tiers would have succeeded, and returns
// the full audit of what the repair engine did.
func ParseWithDetailedRepairTracking(input string, opts options.ParserOptions) TieredResult {
	opts = opts.Normalize()
	opts.EnableRepair = true
	return newOrchestrator(opts).run(input, true)
}
