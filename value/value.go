// Package value defines the parsed value model: a closed tagged union of
// the seven JSON value kinds, plus serialization back to text.
//
// Unlike object.Object in the VM-oriented packages this was grounded on,
// Value is not an interface with per-type implementations. A forgiving
// JSON parser produces values from untrusted, partially-repaired input and
// has no need for method dispatch, attribute lookup, or operators between
// values — a single struct with a Kind tag is simpler to construct,
// compare, and serialize, and keeps the parser from allocating one
// interface-satisfying struct per scalar.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which of the seven JSON value shapes a Value holds.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Integer
	Float
	String
	Array
	Object
)

var kindNames = [...]string{
	Null:    "null",
	Bool:    "bool",
	Integer: "integer",
	Float:   "float",
	String:  "string",
	Array:   "array",
	Object:  "object",
}

// String returns the kind's lowercase name, e.g. "integer".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is an immutable JSON value. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []Value
	obj  map[string]Value

	// keys preserves the order keys were first inserted, used only so that
	// Stringify's non-pretty path can emit keys in the order they were
	// parsed rather than Go's randomized map order. Pretty output ignores
	// this and sorts instead.
	keys []string
}

// NewNull returns the null value.
func NewNull() Value { return Value{kind: Null} }

// NewBool wraps a boolean.
func NewBool(b bool) Value { return Value{kind: Bool, b: b} }

// NewInteger wraps a 64-bit integer.
func NewInteger(i int64) Value { return Value{kind: Integer, i: i} }

// NewFloat wraps a 64-bit float. NaN and Inf are rejected by the parser
// before reaching here; Stringify writes either as null.
func NewFloat(f float64) Value { return Value{kind: Float, f: f} }

// NewString wraps a decoded string.
func NewString(s string) Value { return Value{kind: String, s: s} }

// NewArray wraps a slice of values. The slice is retained, not copied.
func NewArray(items []Value) Value { return Value{kind: Array, arr: items} }

// NewObject builds an object value from keys in insertion order. keys is
// stored as given and should list each key of vals once; the parsers keep
// the last value of a duplicate key ("last key wins") before calling it.
func NewObject(keys []string, vals map[string]Value) Value {
	return Value{kind: Object, obj: vals, keys: keys}
}

// Kind reports which of the seven shapes this value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether this is the null value.
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean payload; only meaningful when Kind() == Bool.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload; only meaningful when Kind() == Integer.
func (v Value) Int() int64 { return v.i }

// Float64 returns the float payload; only meaningful when Kind() == Float.
func (v Value) Float64() float64 { return v.f }

// Str returns the string payload; only meaningful when Kind() == String.
func (v Value) Str() string { return v.s }

// Elements returns the array payload; only meaningful when Kind() == Array.
func (v Value) Elements() []Value { return v.arr }

// Keys returns object keys in insertion order; only meaningful when
// Kind() == Object.
func (v Value) Keys() []string { return v.keys }

// Get returns the value for key and whether it was present; only
// meaningful when Kind() == Object.
func (v Value) Get(key string) (Value, bool) {
	val, ok := v.obj[key]
	return val, ok
}

// Len returns the number of elements or keys; zero for scalar kinds.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.keys)
	default:
		return 0
	}
}

// Interface converts a Value to its native Go representation: nil, bool,
// int64, float64, string, []interface{}, or map[string]interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case Null:
		return nil
	case Bool:
		return v.b
	case Integer:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	case Array:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case Object:
		out := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equals reports deep structural equality. Integer and Float never compare
// equal across kinds, matching the distinction the spec requires the
// parser to preserve.
func (v Value) Equals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.b == other.b
	case Integer:
		return v.i == other.i
	case Float:
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case String:
		return v.s == other.s
	case Array:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equals(other.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, e := range v.obj {
			oe, ok := other.obj[k]
			if !ok || !e.Equals(oe) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Inspect renders a short debug form, e.g. `Value(integer: 42)`. Stringify
// is the JSON-producing serializer; this is for logs and test failures.
func (v Value) Inspect() string {
	switch v.kind {
	case Null:
		return "Value(null)"
	case Bool:
		return fmt.Sprintf("Value(bool: %t)", v.b)
	case Integer:
		return fmt.Sprintf("Value(integer: %d)", v.i)
	case Float:
		return fmt.Sprintf("Value(float: %s)", strconv.FormatFloat(v.f, 'g', -1, 64))
	case String:
		return fmt.Sprintf("Value(string: %q)", v.s)
	case Array:
		return fmt.Sprintf("Value(array: len=%d)", len(v.arr))
	case Object:
		return fmt.Sprintf("Value(object: len=%d)", len(v.keys))
	default:
		return "Value(?)"
	}
}

// StringifyOptions controls Stringify's output format.
type StringifyOptions struct {
	// Pretty enables multi-line, indented output. Compact output (the
	// default) packs everything onto one line with no extra whitespace.
	Pretty bool

	// Indent is the number of spaces per nesting level in pretty mode.
	// Ignored when Pretty is false. Zero defaults to 2.
	Indent int

	// SortKeys orders object keys alphabetically in either mode. Without
	// it, compact output emits keys in parse order; pretty mode always
	// sorts for reproducible diffs, matching how the reference tooling
	// this was modeled on renders indented output.
	SortKeys bool
}

// Stringify serializes v to JSON text. It does not go through
// encoding/json: that package would round-trip through interface{} and
// lose the Integer/Float distinction Value preserves, and offers no way to
// keep keys in parse order for compact output.
func Stringify(v Value, opts StringifyOptions) string {
	var b strings.Builder
	indent := opts.Indent
	if indent <= 0 {
		indent = 2
	}
	w := &writer{b: &b, pretty: opts.Pretty, indent: indent, sortKeys: opts.SortKeys || opts.Pretty}
	w.write(v, 0)
	return b.String()
}

type writer struct {
	b        *strings.Builder
	pretty   bool
	indent   int
	sortKeys bool
}

func (w *writer) newline(depth int) {
	if !w.pretty {
		return
	}
	w.b.WriteByte('\n')
	w.b.WriteString(strings.Repeat(" ", depth*w.indent))
}

func (w *writer) write(v Value, depth int) {
	switch v.kind {
	case Null:
		w.b.WriteString("null")
	case Bool:
		if v.b {
			w.b.WriteString("true")
		} else {
			w.b.WriteString("false")
		}
	case Integer:
		w.b.WriteString(strconv.FormatInt(v.i, 10))
	case Float:
		w.writeFloat(v.f)
	case String:
		w.writeString(v.s)
	case Array:
		w.writeArray(v.arr, depth)
	case Object:
		w.writeObject(v, depth)
	}
}

func (w *writer) writeFloat(f float64) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		w.b.WriteString("null")
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Ensure a float always round-trips as a float, even when its value is
	// integral (e.g. 2.0 must not print as "2").
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	w.b.WriteString(s)
}

func (w *writer) writeString(s string) {
	w.b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			w.b.WriteString(`\"`)
		case '\\':
			w.b.WriteString(`\\`)
		case '\n':
			w.b.WriteString(`\n`)
		case '\r':
			w.b.WriteString(`\r`)
		case '\t':
			w.b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(w.b, `\u%04x`, r)
			} else {
				w.b.WriteRune(r)
			}
		}
	}
	w.b.WriteByte('"')
}

func (w *writer) writeArray(items []Value, depth int) {
	if len(items) == 0 {
		w.b.WriteString("[]")
		return
	}
	w.b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			w.b.WriteByte(',')
		}
		w.newline(depth + 1)
		w.write(item, depth+1)
	}
	w.newline(depth)
	w.b.WriteByte(']')
}

func (w *writer) writeObject(v Value, depth int) {
	keys := v.keys
	if w.sortKeys {
		keys = append([]string(nil), keys...)
		sort.Strings(keys)
	}
	if len(keys) == 0 {
		w.b.WriteString("{}")
		return
	}
	w.b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			w.b.WriteByte(',')
		}
		w.newline(depth + 1)
		w.writeString(k)
		w.b.WriteByte(':')
		if w.pretty {
			w.b.WriteByte(' ')
		}
		w.write(v.obj[k], depth+1)
	}
	w.newline(depth)
	w.b.WriteByte('}')
}
