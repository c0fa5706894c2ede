// Package options defines ParserOptions and the functional-option
// constructors used to configure a parse. The pattern mirrors the
// teacher's functional-option style for per-call configuration: each
// Option is a small closure applied over a mutable struct, letting callers
// pass only the settings they care to override.
package options

// ParserOptions configures a single parse call across the lexer, parser,
// and repair engine.
type ParserOptions struct {
	// AllowComments permits "//", "#", and "/* */" comments.
	AllowComments bool

	// AllowTrailingCommas permits a comma immediately before a closing
	// bracket or brace.
	AllowTrailingCommas bool

	// AllowUnquotedKeys permits bare identifiers as object keys.
	AllowUnquotedKeys bool

	// AllowSingleQuotes permits '...' as an alternative to "...".
	AllowSingleQuotes bool

	// AllowImplicitTopLevel wraps a bare comma-separated sequence of
	// values at the top level in an implicit array, or a bare sequence of
	// key:value pairs in an implicit object.
	AllowImplicitTopLevel bool

	// NewlineAsComma treats a newline as equivalent to a comma inside
	// arrays and objects.
	NewlineAsComma bool

	// AllowAlternateNumberBases permits 0x/0o/0b literals and '_' digit
	// separators.
	AllowAlternateNumberBases bool

	// MaxDepth bounds array/object nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	// EnableRepair turns on the repair engine as a fallback tier.
	EnableRepair bool

	// RepairConfidenceThreshold is the minimum confidence score (0..1) a
	// proposed repair action must reach to be applied. Zero means
	// DefaultRepairConfidenceThreshold.
	RepairConfidenceThreshold float64

	// MaxRepairs bounds the number of repair actions applied to a single
	// input. Zero means DefaultMaxRepairs.
	MaxRepairs int

	// RepairHistorySize bounds the number of audit entries retained by a
	// repair engine's history. Zero means DefaultRepairHistorySize.
	RepairHistorySize int

	// UseIterativeParser selects the stack-based parser instead of the
	// recursive-descent one. Both must accept the same inputs; this only
	// changes which implementation runs.
	UseIterativeParser bool
}

const (
	DefaultMaxDepth                  = 128
	DefaultRepairConfidenceThreshold = 0.7
	DefaultMaxRepairs                = 100
	DefaultRepairHistorySize         = 100
)

// Strict returns the options for RFC 8259-only parsing: no extensions, no
// repair.
func Strict() ParserOptions {
	return ParserOptions{MaxDepth: DefaultMaxDepth}
}

// Forgiving returns the options for the lenient JSON5-like grammar, with
// repair disabled.
func Forgiving() ParserOptions {
	return ParserOptions{
		AllowComments:             true,
		AllowTrailingCommas:       true,
		AllowUnquotedKeys:         true,
		AllowSingleQuotes:         true,
		AllowImplicitTopLevel:     true,
		NewlineAsComma:            true,
		AllowAlternateNumberBases: true,
		MaxDepth:                  DefaultMaxDepth,
	}
}

// WithRepair returns a copy of opts with the repair engine enabled at the
// default confidence threshold.
func WithRepair(opts ParserOptions) ParserOptions {
	opts.EnableRepair = true
	if opts.RepairConfidenceThreshold == 0 {
		opts.RepairConfidenceThreshold = DefaultRepairConfidenceThreshold
	}
	return opts
}

// Option mutates a ParserOptions in place. Functions in this package build
// a base ParserOptions (Strict or Forgiving); Option values layer
// call-specific overrides on top, the way the teacher's own option
// functions layer onto a base configuration.
type Option func(*ParserOptions)

// Apply runs each Option over opts in order and returns the result.
func Apply(opts ParserOptions, fns ...Option) ParserOptions {
	for _, fn := range fns {
		fn(&opts)
	}
	return opts
}

func MaxDepth(n int) Option {
	return func(o *ParserOptions) { o.MaxDepth = n }
}

func EnableRepair(enabled bool) Option {
	return func(o *ParserOptions) { o.EnableRepair = enabled }
}

func RepairConfidenceThreshold(t float64) Option {
	return func(o *ParserOptions) { o.RepairConfidenceThreshold = t }
}

func MaxRepairs(n int) Option {
	return func(o *ParserOptions) { o.MaxRepairs = n }
}

func RepairHistorySize(n int) Option {
	return func(o *ParserOptions) { o.RepairHistorySize = n }
}

func UseIterativeParser(use bool) Option {
	return func(o *ParserOptions) { o.UseIterativeParser = use }
}

func AllowComments(allow bool) Option {
	return func(o *ParserOptions) { o.AllowComments = allow }
}

func AllowTrailingCommas(allow bool) Option {
	return func(o *ParserOptions) { o.AllowTrailingCommas = allow }
}

func NewlineAsComma(allow bool) Option {
	return func(o *ParserOptions) { o.NewlineAsComma = allow }
}

// Normalize fills zero-valued numeric fields with their defaults. Called
// once by the parser entry points so callers building a ParserOptions
// literal by hand don't need to know the defaults.
func (o ParserOptions) Normalize() ParserOptions {
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.EnableRepair && o.RepairConfidenceThreshold == 0 {
		o.RepairConfidenceThreshold = DefaultRepairConfidenceThreshold
	}
	if o.MaxRepairs == 0 {
		o.MaxRepairs = DefaultMaxRepairs
	}
	if o.RepairHistorySize == 0 {
		o.RepairHistorySize = DefaultRepairHistorySize
	}
	return o
}
