// Package repair implements the structural-fix pipeline invoked when the
// forgiving parser fails: a set of confidence-scored detection strategies
// propose edits to the working buffer, proposals above a threshold are
// applied in descending position order, and the result is handed back to
// the forgiving parser for re-parsing.
//
// Grounded on original_source/crates/core/src/repair/advanced.rs
// (AdvancedJsonRepairer, RepairStrategy, RepairConfidence, RepairHistory)
// and error/recovery/mod.rs (analyze_unexpected_eof's bracket/string
// counting). The Rust regex-driven strategies are reimplemented as small
// byte scanners since Go has no installed regex dependency in this corpus.
package repair

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"

	"github.com/flexjson/flexjson/ferr"
)

// ActionKind is the closed set of repair kinds a strategy may propose.
type ActionKind string

const (
	InsertBracket ActionKind = "InsertBracket"
	RemoveBracket ActionKind = "RemoveBracket"
	ReplaceBracket ActionKind = "ReplaceBracket"
	BalanceQuotes  ActionKind = "BalanceQuotes"
	InsertComma    ActionKind = "InsertComma"
	RemoveComma    ActionKind = "RemoveComma"
	InsertText     ActionKind = "InsertText"
	ReplaceText    ActionKind = "ReplaceText"
	ReplaceQuotes  ActionKind = "ReplaceQuotes"
	TypeCoercion   ActionKind = "TypeCoercion"
	QuoteKey       ActionKind = "QuoteKey"
)

// Action is a single proposed structural edit to the working buffer.
type Action struct {
	Kind        ActionKind
	Position    int
	Original    string
	Replacement string
	Description string
}

// Strategy pairs a proposed Action with a confidence score in [0,1].
type Strategy struct {
	Action     Action
	Confidence float64
}

// Result is the outcome of a single repair run.
type Result struct {
	original string
	Repaired string
	Actions  []Action
}

// Original returns the input the repair run analyzed.
func (r Result) Original() string {
	return r.original
}

// Repairer analyzes malformed input and proposes/applies structural
// repairs. It owns a bounded History; concurrent repairs must each hold
// their own Repairer or synchronize externally.
type Repairer struct {
	confidenceThreshold float64
	maxRepairs          int
	previewMode         bool
	history             *History
}

// New constructs a Repairer at the given confidence threshold and repair
// cap, with a history of the given capacity.
func New(confidenceThreshold float64, maxRepairs, historySize int) *Repairer {
	if confidenceThreshold <= 0 {
		confidenceThreshold = 0.7
	}
	if maxRepairs <= 0 {
		maxRepairs = 100
	}
	if historySize <= 0 {
		historySize = 100
	}
	return &Repairer{
		confidenceThreshold: confidenceThreshold,
		maxRepairs:          maxRepairs,
		history:             newHistory(historySize),
	}
}

// WithPreviewMode returns a copy of r with preview mode toggled: in
// preview mode, Repair analyzes and reports strategies without applying
// them or touching history.
func (r *Repairer) WithPreviewMode(enabled bool) *Repairer {
	clone := *r
	clone.previewMode = enabled
	return &clone
}

// History returns the repair audit history.
func (r *Repairer) History() *History {
	return r.history
}

// Repair analyzes input, applies all proposals at or above the
// confidence threshold in descending position order, and returns the
// repaired buffer and the actions applied. Exceeding maxRepairs fails
// with ferr.MaxRepairsExceeded. Internal consistency failures (an
// action's position no longer valid after earlier edits) fail with
// ferr.RepairFailed.
func (r *Repairer) Repair(input string) (Result, error) {
	strategies := analyze(input)

	applicable := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s.Confidence >= r.confidenceThreshold {
			applicable = append(applicable, s)
		}
	}

	if len(applicable) > r.maxRepairs {
		return Result{}, ferr.MaxRepairsExceeded()
	}

	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Action.Position > applicable[j].Action.Position
	})

	if r.previewMode {
		actions := make([]Action, len(applicable))
		for i, s := range applicable {
			actions[i] = s.Action
		}
		return Result{original: input, Repaired: input, Actions: actions}, nil
	}

	repaired := input
	applied := make([]Action, 0, len(applicable))
	for _, s := range applicable {
		next, err := apply(repaired, s.Action)
		if err != nil {
			return Result{}, err
		}
		repaired = next
		applied = append(applied, s.Action)
	}

	r.history.add(Entry{
		Original: input,
		Repaired: repaired,
		Actions:  applied,
		Success:  true,
	})

	return Result{original: input, Repaired: repaired, Actions: applied}, nil
}

// Preview analyzes input and reports what Repair would do without
// mutating history or requiring a subsequent Repair call.
func (r *Repairer) Preview(input string) Result {
	rr := r.WithPreviewMode(true)
	res, _ := rr.Repair(input)
	return res
}

// analyze runs every detection strategy and returns proposals sorted by
// descending confidence, matching analyze_and_plan_repairs's ordering
// before the position-descending sort application applies.
func analyze(input string) []Strategy {
	var strategies []Strategy
	strategies = append(strategies, analyzeBracketBalance(input)...)
	strategies = append(strategies, analyzeQuoteIssues(input)...)
	strategies = append(strategies, analyzeTypeCoercion(input)...)
	strategies = append(strategies, analyzeMissingCommas(input)...)
	strategies = append(strategies, analyzeUnquotedKeys(input)...)

	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].Confidence > strategies[j].Confidence
	})
	return strategies
}

// analyzeBracketBalance implements the bracket-balancing and
// quote-inference strategies, grounded on analyze_unexpected_eof: a
// single string-aware scan counts unclosed '{'/'[' and tracks whether
// the scan ends inside a string.
func analyzeBracketBalance(input string) []Strategy {
	var strategies []Strategy

	braceDepth := 0
	bracketDepth := 0
	inString := false
	escapeNext := false

	for i := 0; i < len(input); i++ {
		ch := input[i]
		if escapeNext {
			escapeNext = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escapeNext = true
		case ch == '"':
			inString = !inString
		case ch == '{' && !inString:
			braceDepth++
		case ch == '}' && !inString:
			braceDepth--
			if braceDepth < 0 {
				strategies = append(strategies, Strategy{
					Action: Action{
						Kind:        RemoveBracket,
						Position:    i,
						Description: "extra closing brace with no matching opener",
					},
					Confidence: 0.6,
				})
				braceDepth = 0
			}
		case ch == '[' && !inString:
			bracketDepth++
		case ch == ']' && !inString:
			bracketDepth--
			if bracketDepth < 0 {
				strategies = append(strategies, Strategy{
					Action: Action{
						Kind:        RemoveBracket,
						Position:    i,
						Description: "extra closing bracket with no matching opener",
					},
					Confidence: 0.6,
				})
				bracketDepth = 0
			}
		}
	}

	pos := len(input)
	for i := 0; i < braceDepth; i++ {
		strategies = append(strategies, Strategy{
			Action: Action{
				Kind:        InsertBracket,
				Position:    pos,
				Replacement: "}",
				Description: "insert missing closing brace",
			},
			Confidence: 0.85,
		})
	}
	for i := 0; i < bracketDepth; i++ {
		strategies = append(strategies, Strategy{
			Action: Action{
				Kind:        InsertBracket,
				Position:    pos,
				Replacement: "]",
				Description: "insert missing closing bracket",
			},
			Confidence: 0.85,
		})
	}
	if inString {
		strategies = append(strategies, Strategy{
			Action: Action{
				Kind:        BalanceQuotes,
				Position:    pos,
				Replacement: `"`,
				Description: "close unterminated string",
			},
			Confidence: 0.85,
		})
	}
	return strategies
}

// analyzeQuoteIssues finds single-quoted strings and proposes replacing
// both delimiters with double quotes, grounded on analyze_quote_issues.
func analyzeQuoteIssues(input string) []Strategy {
	var strategies []Strategy
	i := 0
	for i < len(input) {
		if input[i] == '\'' {
			start := i
			i++
			for i < len(input) && input[i] != '\'' {
				if input[i] == '\\' {
					i += 2
					continue
				}
				i++
			}
			if i < len(input) {
				strategies = append(strategies,
					Strategy{
						Action: Action{
							Kind:        ReplaceQuotes,
							Position:    start,
							Original:    "'",
							Replacement: `"`,
							Description: "replace opening single quote with double quote",
						},
						Confidence: 0.9,
					},
					Strategy{
						Action: Action{
							Kind:        ReplaceQuotes,
							Position:    i,
							Original:    "'",
							Replacement: `"`,
							Description: "replace closing single quote with double quote",
						},
						Confidence: 0.9,
					},
				)
			}
		}
		i++
	}
	return strategies
}

// analyzeTypeCoercion finds quoted numbers and proposes unquoting them,
// grounded on analyze_type_coercion's numeric-parse-gated check.
func analyzeTypeCoercion(input string) []Strategy {
	var strategies []Strategy
	i := 0
	for i < len(input) {
		if input[i] != '"' {
			i++
			continue
		}
		start := i
		j := i + 1
		for j < len(input) && input[j] != '"' {
			if input[j] == '\\' {
				j += 2
				continue
			}
			j++
		}
		if j >= len(input) {
			break
		}
		inner := input[start+1 : j]
		if looksNumeric(inner) {
			if _, err := strconv.ParseFloat(inner, 64); err == nil {
				strategies = append(strategies, Strategy{
					Action: Action{
						Kind:        TypeCoercion,
						Position:    start,
						Original:    input[start : j+1],
						Replacement: inner,
						Description: "convert quoted number " + strconv.Quote(inner) + " to unquoted",
					},
					Confidence: 0.8,
				})
			}
		}
		i = j + 1
	}
	return strategies
}

func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	if i == len(s) {
		return false
	}
	sawDigit := false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			sawDigit = true
		case c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-':
			// allowed within a numeric literal body
		default:
			return false
		}
	}
	return sawDigit
}

// analyzeMissingCommas finds a closing bracket/brace immediately
// followed (after whitespace) by the start of a new value, grounded on
// analyze_missing_commas's "}\s*" lookahead pattern.
func analyzeMissingCommas(input string) []Strategy {
	var strategies []Strategy
	for i := 0; i < len(input); i++ {
		if input[i] != '}' && input[i] != ']' {
			continue
		}
		j := i + 1
		for j < len(input) && isSpaceByte(input[j]) {
			j++
		}
		if j >= len(input) {
			continue
		}
		next := input[j]
		if next == '"' || next == '{' || next == '[' {
			strategies = append(strategies, Strategy{
				Action: Action{
					Kind:        InsertComma,
					Position:    j,
					Replacement: ",",
					Description: "insert missing comma between elements",
				},
				Confidence: 0.85,
			})
		}
	}
	return strategies
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// analyzeUnquotedKeys finds bare-identifier object keys and proposes
// quoting them, grounded on analyze_unquoted_keys, skipping keys already
// inside quotes.
func analyzeUnquotedKeys(input string) []Strategy {
	var strategies []Strategy
	i := 0
	for i < len(input) {
		if !isIdentStartByte(input[i]) {
			i++
			continue
		}
		start := i
		j := i
		for j < len(input) && isIdentContByte(input[j]) {
			j++
		}
		k := j
		for k < len(input) && isSpaceByte(input[k]) {
			k++
		}
		if k < len(input) && input[k] == ':' {
			if start == 0 || (input[start-1] != '"' && input[start-1] != '\'') {
				key := input[start:j]
				strategies = append(strategies, Strategy{
					Action: Action{
						Kind:        QuoteKey,
						Position:    start,
						Original:    key,
						Replacement: strconv.Quote(key),
						Description: "add quotes to key '" + key + "'",
					},
					Confidence: 0.75,
				})
			}
		}
		i = j
	}
	return strategies
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContByte(b byte) bool {
	return isIdentStartByte(b) || (b >= '0' && b <= '9')
}

// apply performs a single edit against buf, returning the new buffer.
// Position is validated against buf's current length since earlier
// edits (applied first, at higher positions) may have changed it for
// anything at a lower position — which is exactly why actions are
// applied in descending position order.
func apply(buf string, a Action) (string, error) {
	switch a.Kind {
	case InsertBracket, InsertComma, InsertText, BalanceQuotes:
		if a.Position > len(buf) {
			return "", ferr.RepairFailed("insert position out of bounds after earlier edits")
		}
		var b strings.Builder
		b.Grow(len(buf) + len(a.Replacement))
		b.WriteString(buf[:a.Position])
		b.WriteString(a.Replacement)
		b.WriteString(buf[a.Position:])
		return b.String(), nil

	case RemoveBracket, RemoveComma:
		if a.Position >= len(buf) {
			return "", ferr.RepairFailed("remove position out of bounds after earlier edits")
		}
		return buf[:a.Position] + buf[a.Position+1:], nil

	case ReplaceBracket, ReplaceText, ReplaceQuotes, TypeCoercion, QuoteKey:
		end := a.Position + len(a.Original)
		if a.Position > len(buf) || end > len(buf) {
			return "", ferr.RepairFailed("replace span out of bounds after earlier edits")
		}
		var b strings.Builder
		b.Grow(len(buf) - len(a.Original) + len(a.Replacement))
		b.WriteString(buf[:a.Position])
		b.WriteString(a.Replacement)
		b.WriteString(buf[end:])
		return b.String(), nil

	default:
		return buf, nil
	}
}

// Entry is a single audit record of a completed repair run.
type Entry struct {
	ID       uuid.UUID
	Original string
	Repaired string
	Actions  []Action
	Success  bool
}

// History is a bounded, newest-first audit log of repair runs. Grounded
// on RepairHistory's VecDeque push_front/pop_back eviction, implemented
// here as a Go slice that each add prepends to and truncates to capacity,
// since capacity stays small (default 100).
type History struct {
	maxEntries int
	entries    []Entry
}

func newHistory(maxEntries int) *History {
	return &History{maxEntries: maxEntries}
}

func (h *History) add(e Entry) {
	id, err := uuid.NewV4()
	if err == nil {
		e.ID = id
	}
	h.entries = append([]Entry{e}, h.entries...)
	if len(h.entries) > h.maxEntries {
		h.entries = h.entries[:h.maxEntries]
	}
}

// Entries returns the history in newest-first order.
func (h *History) Entries() []Entry {
	return h.entries
}

// Len returns the number of entries currently retained.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear discards all entries.
func (h *History) Clear() {
	h.entries = nil
}
