// Package feel implements the FEEL (Friendly Enough Expression Language)
// lexer, parser, AST, and evaluator used by DMN decisions and decision
// tables.
package feel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// DecimalContext fixes the precision and rounding mode for every Number
// operation: 34 significant digits (decimal128-equivalent) with
// round-half-to-even, per the data model's arbitrary-precision requirement.
var DecimalContext = apd.BaseContext.WithPrecision(34)

func init() {
	DecimalContext.Rounding = apd.RoundHalfEven
}

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindDate
	KindTime
	KindDateTime
	KindDayTimeDuration
	KindYearMonthDuration
	KindList
	KindContext
	KindRange
	KindFunction
)

// Value is the tagged union of FEEL runtime values.
type Value struct {
	kind Kind

	b bool
	n *apd.Decimal
	s string

	temporal *Temporal
	duration *Duration

	list []Value
	ctx  *Context

	rng *RangeVal

	fn *Function
}

// Null is the singular null value.
var Null = Value{kind: KindNull}

func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

func Number(n *apd.Decimal) Value { return Value{kind: KindNumber, n: n} }

// NumberFromInt64 builds a Number value from an int64.
func NumberFromInt64(i int64) Value {
	return Value{kind: KindNumber, n: apd.New(i, 0)}
}

// NumberFromFloat64 builds a Number value from a float64, best-effort.
func NumberFromFloat64(f float64) Value {
	d, _, _ := apd.NewFromString(fmt.Sprintf("%v", f))
	return Value{kind: KindNumber, n: d}
}

// NumberFromString parses a decimal literal into a Number value.
func NumberFromString(s string) (Value, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Null, fmt.Errorf("invalid number literal %q: %w", s, err)
	}
	return Value{kind: KindNumber, n: d}, nil
}

func String(s string) Value { return Value{kind: KindString, s: s} }

func DateVal(t *Temporal) Value     { return Value{kind: KindDate, temporal: t} }
func TimeVal(t *Temporal) Value     { return Value{kind: KindTime, temporal: t} }
func DateTimeVal(t *Temporal) Value { return Value{kind: KindDateTime, temporal: t} }

func DayTimeDurationVal(d *Duration) Value   { return Value{kind: KindDayTimeDuration, duration: d} }
func YearMonthDurationVal(d *Duration) Value { return Value{kind: KindYearMonthDuration, duration: d} }

func List(items []Value) Value { return Value{kind: KindList, list: items} }

func ContextVal(c *Context) Value { return Value{kind: KindContext, ctx: c} }

func RangeValOf(r *RangeVal) Value { return Value{kind: KindRange, rng: r} }

func FunctionVal(f *Function) Value { return Value{kind: KindFunction, fn: f} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

func (v Value) AsNumber() (*apd.Decimal, bool) {
	if v.kind != KindNumber {
		return nil, false
	}
	return v.n, true
}

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

func (v Value) AsTemporal() (*Temporal, bool) {
	if v.temporal == nil {
		return nil, false
	}
	return v.temporal, true
}

func (v Value) AsDuration() (*Duration, bool) {
	if v.duration == nil {
		return nil, false
	}
	return v.duration, true
}

func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

func (v Value) AsContext() (*Context, bool) {
	if v.kind != KindContext {
		return nil, false
	}
	return v.ctx, true
}

func (v Value) AsRange() (*RangeVal, bool) {
	if v.kind != KindRange {
		return nil, false
	}
	return v.rng, true
}

func (v Value) AsFunction() (*Function, bool) {
	if v.kind != KindFunction {
		return nil, false
	}
	return v.fn, true
}

// IsTruthy implements FEEL's notion of truthiness for control constructs:
// only the Boolean true value is truthy; everything else (including Null)
// is not.
func (v Value) IsTruthy() bool {
	return v.kind == KindBoolean && v.b
}

// Context is an insertion-ordered name -> Value mapping.
type Context struct {
	keys   []string
	values map[string]Value
}

func NewContext() *Context {
	return &Context{values: make(map[string]Value)}
}

func (c *Context) Set(name string, v Value) {
	if _, ok := c.values[name]; !ok {
		c.keys = append(c.keys, name)
	}
	c.values[name] = v
}

func (c *Context) Get(name string) (Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

func (c *Context) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Context) Len() int { return len(c.keys) }

func (c *Context) Clone() *Context {
	clone := &Context{
		keys:   append([]string(nil), c.keys...),
		values: make(map[string]Value, len(c.values)),
	}
	for k, v := range c.values {
		clone.values[k] = v
	}
	return clone
}

// RangeVal is a FEEL interval with independently open/closed, possibly
// unbounded, endpoints.
type RangeVal struct {
	Low, High               Value
	LowInclusive            bool
	HighInclusive           bool
	LowUnbounded            bool
	HighUnbounded           bool
}

// Function is a closure: either a user-defined body over a parameter
// list and captured environment, or a built-in identified by name.
type Function struct {
	Params  []string
	Body    Expr
	Closure *Environment
	Builtin string
}

// String renders a Value the way the DMN engine's user-facing surfaces
// (trace printing, CLI output) expect to see it.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBoolean:
		if v.b {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.n.Text('f')
	case KindString:
		return v.s
	case KindDate, KindTime, KindDateTime:
		return v.temporal.String()
	case KindDayTimeDuration, KindYearMonthDuration:
		return v.duration.String()
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindContext:
		keys := append([]string(nil), v.ctx.keys...)
		sort.Strings(keys) // deterministic rendering only; lookup stays insertion-ordered
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			val, _ := v.ctx.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRange:
		lo := "?"
		if !v.rng.LowUnbounded {
			lo = v.rng.Low.String()
		}
		hi := "?"
		if !v.rng.HighUnbounded {
			hi = v.rng.High.String()
		}
		open, close := "[", "]"
		if !v.rng.LowInclusive {
			open = "("
		}
		if !v.rng.HighInclusive {
			close = ")"
		}
		return fmt.Sprintf("%s%s..%s%s", open, lo, hi, close)
	case KindFunction:
		return "function"
	default:
		return "?"
	}
}
