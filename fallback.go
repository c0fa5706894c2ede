package flexjson

import (
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"

	"github.com/flexjson/flexjson/ferr"
	"github.com/flexjson/flexjson/options"
	"github.com/flexjson/flexjson/parser"
	"github.com/flexjson/flexjson/repair"
	"github.com/flexjson/flexjson/value"
)

// orchestrator runs the three-tier fallback pipeline. One logging event
// per tier attempt is emitted at Debug level (via the package-level
// zerolog logger, the way the teacher's LSP logs per-request outcomes),
// so default library/CLI usage stays silent.
type orchestrator struct {
	opts     options.ParserOptions
	repairer *repair.Repairer
}

func newOrchestrator(opts options.ParserOptions) *orchestrator {
	opts = opts.Normalize()
	return &orchestrator{
		opts:     opts,
		repairer: repair.New(opts.RepairConfidenceThreshold, opts.MaxRepairs, opts.RepairHistorySize),
	}
}

func (o *orchestrator) run(input string, forceRepair bool) TieredResult {
	var tierErrors *multierror.Error

	if !forceRepair {
		fastOpts := options.Strict()
		v, err := parser.New(input, fastOpts).Parse()
		log.Debug().Str("tier", "fast").Bool("ok", err == nil).Msg("flexjson: tier attempt")
		if err == nil {
			return TieredResult{Value: v, Tier: TierFast}
		}
		tierErrors = multierror.Append(tierErrors, err)

		v, err = parseUnderOpts(input, o.opts)
		log.Debug().Str("tier", "forgiving").Bool("ok", err == nil).Msg("flexjson: tier attempt")
		if err == nil {
			return TieredResult{Value: v, Tier: TierForgiving}
		}
		tierErrors = multierror.Append(tierErrors, err)
	}

	if !o.opts.EnableRepair {
		var last error
		if tierErrors != nil && len(tierErrors.Errors) > 0 {
			last = tierErrors.Errors[len(tierErrors.Errors)-1]
		}
		return TieredResult{
			Value:    value.NewNull(),
			Tier:     TierForgiving,
			Errors:   []*ferr.Error{asFerr(last)},
			tierErrs: tierErrorSlice(tierErrors),
		}
	}

	res, rerr := o.repairer.Repair(input)
	if rerr != nil {
		log.Debug().Str("tier", "repair").Bool("ok", false).Msg("flexjson: tier attempt")
		tierErrors = multierror.Append(tierErrors, rerr)
		return TieredResult{
			Value:    value.NewNull(),
			Tier:     TierRepair,
			Errors:   []*ferr.Error{asFerr(rerr)},
			tierErrs: tierErrorSlice(tierErrors),
		}
	}

	v, perr := parseUnderOpts(res.Repaired, o.opts)
	log.Debug().Str("tier", "repair").Bool("ok", perr == nil).Msg("flexjson: tier attempt")
	if perr != nil {
		tierErrors = multierror.Append(tierErrors, perr)
		return TieredResult{
			Value:    value.NewNull(),
			Tier:     TierRepair,
			Repairs:  res.Actions,
			Errors:   []*ferr.Error{asFerr(perr)},
			tierErrs: tierErrorSlice(tierErrors),
		}
	}

	return TieredResult{Value: v, Tier: TierRepair, Repairs: res.Actions}
}

// tierErrorSlice flattens the internal multierror into a plain []error for
// TieredResult.AllTierErrors, preserving fast/forgiving/repair order.
func tierErrorSlice(me *multierror.Error) []error {
	if me == nil || len(me.Errors) == 0 {
		return nil
	}
	out := make([]error, len(me.Errors))
	copy(out, me.Errors)
	return out
}

func parseUnderOpts(input string, opts options.ParserOptions) (value.Value, error) {
	if opts.UseIterativeParser {
		return parser.NewIterative(input, opts).Parse()
	}
	return parser.New(input, opts).Parse()
}

// asFerr adapts an arbitrary error into *ferr.Error for TieredResult's
// typed Errors slice, wrapping anything that isn't already one with
// WithContext rather than discarding it.
func asFerr(err error) *ferr.Error {
	if err == nil {
		return nil
	}
	if fe, ok := err.(*ferr.Error); ok {
		return fe
	}
	return ferr.WithContext("parse failed across all tiers", err)
}
