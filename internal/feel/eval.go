package feel

import (
	"github.com/cockroachdb/apd/v3"
)

// Evaluator interprets an AST against an Environment. Strict controls
// the split name-resolution behavior: strict evaluators (expression
// decisions, decision-table output entries and defaults) raise
// UnknownName on an unresolved identifier; lenient evaluators
// (decision-table input clause expressions, unary-test endpoint
// sub-expressions) resolve an unknown identifier to Null instead.
//
// Version is the declared DMN version of the model being evaluated, if
// any; it only affects which non-fatal warnings evalTemporalLiteral
// appends to Warnings. Callers that care about those warnings should
// drain and clear Warnings after each decision evaluation.
type Evaluator struct {
	Strict   bool
	Version  string
	Warnings []string
}

func NewEvaluator() *Evaluator          { return &Evaluator{Strict: true} }
func NewLenientEvaluator() *Evaluator   { return &Evaluator{Strict: false} }

// Eval evaluates expr against env, recursively. Recursion depth is
// bounded by the AST's height; pathologically deep expressions are a
// caller concern, not one this evaluator guards against.
func (ev *Evaluator) Eval(expr Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case LiteralExpr:
		return e.Value, nil

	case TemporalLiteralExpr:
		return ev.evalTemporalLiteral(e.Raw)

	case NameRefExpr:
		v, ok := ResolveName(env, e.Raw)
		if !ok {
			if ev.Strict {
				return Null, errUnknownName(e.Raw)
			}
			return Null, nil
		}
		return v, nil

	case ListExpr:
		items := make([]Value, len(e.Elements))
		for i, el := range e.Elements {
			v, err := ev.Eval(el, env)
			if err != nil {
				return Null, err
			}
			items[i] = v
		}
		return List(items), nil

	case ContextExpr:
		ctx := NewContext()
		// Each entry's expression can reference earlier entries, per
		// FEEL context literal semantics, so entries bind into env as
		// they're produced.
		childEnv := env.Child()
		for i, key := range e.Keys {
			v, err := ev.Eval(e.Values[i], childEnv)
			if err != nil {
				return Null, err
			}
			ctx.Set(key, v)
			childEnv.Bind(key, v)
		}
		return ContextVal(ctx), nil

	case UnaryOpExpr:
		return ev.evalUnaryOp(e, env)

	case BinaryExpr:
		return ev.evalBinary(e, env)

	case TernaryExpr:
		cond, err := ev.Eval(e.Cond, env)
		if err != nil {
			return Null, err
		}
		if cond.IsTruthy() {
			return ev.Eval(e.Then, env)
		}
		return ev.Eval(e.Else, env)

	case IfExpr:
		cond, err := ev.Eval(e.Cond, env)
		if err != nil {
			return Null, err
		}
		if cond.IsTruthy() {
			return ev.Eval(e.Then, env)
		}
		return ev.Eval(e.Else, env)

	case BetweenExpr:
		return ev.evalBetween(e, env)

	case InExpr:
		return ev.evalIn(e, env)

	case InstanceOfExpr:
		x, err := ev.Eval(e.X, env)
		if err != nil {
			return Null, err
		}
		return Bool(InstanceOf(x, ParseTypeRef(e.TypeName))), nil

	case ForExpr:
		return ev.evalFor(e, env)

	case QuantifiedExpr:
		return ev.evalQuantified(e, env)

	case FunctionDefExpr:
		return FunctionVal(&Function{Params: e.Params, Body: e.Body, Closure: env}), nil

	case CallExpr:
		return ev.evalCall(e, env)

	case FilterExpr:
		return ev.evalFilter(e, env)

	case MemberExpr:
		return ev.evalMember(e, env)

	default:
		return Null, errType("unsupported AST node %T", expr)
	}
}

func (ev *Evaluator) evalUnaryOp(e UnaryOpExpr, env *Environment) (Value, error) {
	v, err := ev.Eval(e.Operand, env)
	if err != nil {
		return Null, err
	}
	switch e.Op {
	case "-":
		n, ok := v.AsNumber()
		if !ok {
			if v.IsNull() {
				return Null, nil
			}
			return Null, errType("unary '-' requires a number, got %v", v.Kind())
		}
		return Number(decNeg(n)), nil
	case "!":
		b, ok := v.AsBool()
		if !ok {
			if v.IsNull() {
				return Null, nil
			}
			return Null, errType("unary '!' requires a boolean, got %v", v.Kind())
		}
		return Bool(!b), nil
	default:
		return Null, errType("unknown unary operator %q", e.Op)
	}
}

func (ev *Evaluator) evalBinary(e BinaryExpr, env *Environment) (Value, error) {
	switch e.Op {
	case "and":
		left, err := ev.Eval(e.Left, env)
		if err != nil {
			return Null, err
		}
		if b, ok := left.AsBool(); ok && !b {
			return Bool(false), nil // short-circuit
		}
		right, err := ev.Eval(e.Right, env)
		if err != nil {
			return Null, err
		}
		return threeValuedAnd(left, right), nil

	case "or":
		left, err := ev.Eval(e.Left, env)
		if err != nil {
			return Null, err
		}
		if b, ok := left.AsBool(); ok && b {
			return Bool(true), nil // short-circuit
		}
		right, err := ev.Eval(e.Right, env)
		if err != nil {
			return Null, err
		}
		return threeValuedOr(left, right), nil
	}

	left, err := ev.Eval(e.Left, env)
	if err != nil {
		return Null, err
	}
	right, err := ev.Eval(e.Right, env)
	if err != nil {
		return Null, err
	}

	switch e.Op {
	case "+":
		return evalAdd(left, right)
	case "-":
		return evalArithBinary(left, right, decSub, "subtraction")
	case "*":
		return evalArithBinary(left, right, decMul, "multiplication")
	case "/":
		return evalDiv(left, right)
	case "%":
		return evalMod(left, right)
	case "**":
		return evalPow(left, right)
	case "=", "==":
		if left.IsNull() || right.IsNull() {
			return Bool(left.IsNull() && right.IsNull()), nil
		}
		return Bool(Equal(left, right)), nil
	case "!=":
		if left.IsNull() || right.IsNull() {
			return Bool(!(left.IsNull() && right.IsNull())), nil
		}
		return Bool(!Equal(left, right)), nil
	case "<", ">", "<=", ">=":
		return evalOrderCompare(e.Op, left, right)
	default:
		return Null, errType("unknown binary operator %q", e.Op)
	}
}

func evalAdd(left, right Value) (Value, error) {
	if left.IsNull() || right.IsNull() {
		return Null, nil
	}
	if ln, ok := left.AsNumber(); ok {
		if rn, ok := right.AsNumber(); ok {
			res, err := decAdd(ln, rn)
			if err != nil {
				return Null, err
			}
			return Number(res), nil
		}
		return Null, errType("cannot add number and %v", right.Kind())
	}
	if ls, ok := left.AsString(); ok {
		if rs, ok := right.AsString(); ok {
			return String(ls + rs), nil
		}
		return Null, errType("cannot add string and %v", right.Kind())
	}
	if _, ok := left.AsDuration(); ok {
		if _, ok := right.AsDuration(); ok {
			return addDurations(left, right)
		}
	}
	if lt, ok := left.AsTemporal(); ok {
		if rd, ok := right.AsDuration(); ok {
			return addTemporalDuration(left.Kind(), lt, rd, false)
		}
	}
	if rt, ok := right.AsTemporal(); ok {
		if ld, ok := left.AsDuration(); ok {
			return addTemporalDuration(right.Kind(), rt, ld, false)
		}
	}
	return Null, errType("unsupported operand types for '+': %v, %v", left.Kind(), right.Kind())
}

func evalArithBinary(left, right Value, op func(a, b *apd.Decimal) (*apd.Decimal, error), name string) (Value, error) {
	if left.IsNull() || right.IsNull() {
		return Null, nil
	}
	if name == "subtraction" {
		if lt, ok := left.AsTemporal(); ok {
			if rt, ok := right.AsTemporal(); ok {
				return subtractTemporals(lt, rt)
			}
			if rd, ok := right.AsDuration(); ok {
				return addTemporalDuration(left.Kind(), lt, rd, true)
			}
		}
	}
	ln, ok := left.AsNumber()
	if !ok {
		return Null, errType("%s requires numbers, got %v", name, left.Kind())
	}
	rn, ok := right.AsNumber()
	if !ok {
		return Null, errType("%s requires numbers, got %v", name, right.Kind())
	}
	res, err := op(ln, rn)
	if err != nil {
		return Null, err
	}
	return Number(res), nil
}

func evalDiv(left, right Value) (Value, error) {
	if left.IsNull() || right.IsNull() {
		return Null, nil
	}
	ln, ok := left.AsNumber()
	if !ok {
		return Null, errType("division requires numbers, got %v", left.Kind())
	}
	rn, ok := right.AsNumber()
	if !ok {
		return Null, errType("division requires numbers, got %v", right.Kind())
	}
	res, isZero, err := decDiv(ln, rn)
	if isZero {
		return Null, nil // DMN: division by zero is Null, not an error
	}
	if err != nil {
		return Null, err
	}
	return Number(res), nil
}

func evalMod(left, right Value) (Value, error) {
	if left.IsNull() || right.IsNull() {
		return Null, nil
	}
	ln, ok := left.AsNumber()
	if !ok {
		return Null, errType("modulo requires numbers, got %v", left.Kind())
	}
	rn, ok := right.AsNumber()
	if !ok {
		return Null, errType("modulo requires numbers, got %v", right.Kind())
	}
	res, err := decMod(ln, rn)
	if err != nil {
		return Null, err
	}
	return Number(res), nil
}

func evalPow(left, right Value) (Value, error) {
	if left.IsNull() || right.IsNull() {
		return Null, nil
	}
	ln, ok := left.AsNumber()
	if !ok {
		return Null, errType("exponentiation requires numbers, got %v", left.Kind())
	}
	rn, ok := right.AsNumber()
	if !ok {
		return Null, errType("exponentiation requires numbers, got %v", right.Kind())
	}
	res, err := decPow(ln, rn)
	if err != nil {
		return Null, err
	}
	return Number(res), nil
}

func evalOrderCompare(op string, left, right Value) (Value, error) {
	if left.IsNull() || right.IsNull() {
		return Null, nil // ordering with Null is Null
	}
	cmp, ok := Order(left, right)
	if !ok {
		return Null, nil // incompatible types compare as Null
	}
	switch op {
	case "<":
		return Bool(cmp < 0), nil
	case ">":
		return Bool(cmp > 0), nil
	case "<=":
		return Bool(cmp <= 0), nil
	case ">=":
		return Bool(cmp >= 0), nil
	default:
		return Null, errType("unknown comparison operator %q", op)
	}
}

func (ev *Evaluator) evalBetween(e BetweenExpr, env *Environment) (Value, error) {
	x, err := ev.Eval(e.X, env)
	if err != nil {
		return Null, err
	}
	lo, err := ev.Eval(e.Lower, env)
	if err != nil {
		return Null, err
	}
	hi, err := ev.Eval(e.Upper, env)
	if err != nil {
		return Null, err
	}
	loCmp, err := evalOrderCompare(">=", x, lo)
	if err != nil {
		return Null, err
	}
	if !loCmp.IsTruthy() {
		if loCmp.IsNull() {
			return Null, nil
		}
		return Bool(false), nil
	}
	return evalOrderCompare("<=", x, hi)
}

func (ev *Evaluator) evalIn(e InExpr, env *Environment) (Value, error) {
	x, err := ev.Eval(e.X, env)
	if err != nil {
		return Null, err
	}
	lenient := NewLenientEvaluator()
	lenient.Version = ev.Version
	defer func() { ev.Warnings = append(ev.Warnings, lenient.Warnings...) }()
	for _, t := range e.Tests {
		ok, err := lenient.EvalUnaryTest(t, x, env)
		if err != nil {
			return Null, err
		}
		if ok {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func (ev *Evaluator) evalMember(e MemberExpr, env *Environment) (Value, error) {
	target, err := ev.Eval(e.Target, env)
	if err != nil {
		return Null, err
	}
	return MemberAccess(target, e.Name)
}

// MemberAccess implements `v.k`: Context entry lookup, or the named
// temporal/duration component accessor.
func MemberAccess(target Value, name string) (Value, error) {
	if target.IsNull() {
		return Null, nil
	}
	if c, ok := target.AsContext(); ok {
		v, ok := c.Get(name)
		if !ok {
			return Null, nil
		}
		return v, nil
	}
	if t, ok := target.AsTemporal(); ok {
		v, ok := t.Component(name)
		if !ok {
			return Null, nil
		}
		return v, nil
	}
	if d, ok := target.AsDuration(); ok {
		switch name {
		case "years":
			return NumberFromInt64(d.TotalMonths() / 12), nil
		case "months":
			return NumberFromInt64(d.TotalMonths() % 12), nil
		case "days":
			return NumberFromInt64(int64(d.Days)), nil
		case "hours":
			return NumberFromInt64(int64(d.Seconds / 3600)), nil
		case "minutes":
			return NumberFromInt64(int64((d.Seconds % 3600) / 60)), nil
		case "seconds":
			return NumberFromInt64(int64(d.Seconds % 60)), nil
		default:
			return Null, nil
		}
	}
	return Null, errType("member access '.%s' on unsupported type %v", name, target.Kind())
}

func (ev *Evaluator) evalFilter(e FilterExpr, env *Environment) (Value, error) {
	listVal, err := ev.Eval(e.List, env)
	if err != nil {
		return Null, err
	}
	if listVal.IsNull() {
		return Null, nil
	}
	items, ok := listVal.AsList()
	if !ok {
		return Null, errType("filter target must be a list, got %v", listVal.Kind())
	}

	if idxVal, err := ev.Eval(e.Test, env); err == nil {
		if n, ok := idxVal.AsNumber(); ok {
			i64, convErr := n.Int64()
			if convErr == nil {
				idx := int(i64)
				if idx < 0 {
					idx = len(items) + idx + 1
				}
				if idx < 1 || idx > len(items) {
					return Null, nil
				}
				return items[idx-1], nil
			}
		}
	}

	var result []Value
	for _, item := range items {
		childEnv := env.Child()
		childEnv.Bind("item", item)
		tv, err := ev.Eval(e.Test, childEnv)
		if err != nil {
			return Null, err
		}
		if tv.IsTruthy() {
			result = append(result, item)
		}
	}
	return List(result), nil
}

func (ev *Evaluator) evalFor(e ForExpr, env *Environment) (Value, error) {
	combos, err := ev.generateCombos(e.Iterators, env)
	if err != nil {
		return Null, err
	}
	var results []Value
	for _, combo := range combos {
		childEnv := env.Child()
		for _, b := range combo {
			childEnv.Bind(b.name, b.value)
		}
		childEnv.Bind("partial", List(append([]Value(nil), results...)))
		val, err := ev.Eval(e.Body, childEnv)
		if err != nil {
			return Null, err
		}
		results = append(results, val)
	}
	return List(results), nil
}

func (ev *Evaluator) evalQuantified(e QuantifiedExpr, env *Environment) (Value, error) {
	combos, err := ev.generateCombos(e.Iterators, env)
	if err != nil {
		return Null, err
	}
	if len(combos) == 0 {
		return Null, nil
	}
	anyTrue, allTrue := false, true
	for _, combo := range combos {
		childEnv := env.Child()
		for _, b := range combo {
			childEnv.Bind(b.name, b.value)
		}
		val, err := ev.Eval(e.Satisfies, childEnv)
		if err != nil {
			return Null, err
		}
		if val.IsTruthy() {
			anyTrue = true
		} else {
			allTrue = false
		}
	}
	if e.Kind == "some" {
		if anyTrue {
			return Bool(true), nil
		}
		return Null, nil
	}
	if allTrue {
		return Bool(true), nil
	}
	return Null, nil
}

type binding struct {
	name  string
	value Value
}

func (ev *Evaluator) generateCombos(iters []Iterator, env *Environment) ([][]binding, error) {
	if len(iters) == 0 {
		return [][]binding{nil}, nil
	}
	first := iters[0]
	values, err := ev.iterationValues(first, env)
	if err != nil {
		return nil, err
	}
	var combos [][]binding
	for _, v := range values {
		childEnv := env.Child()
		childEnv.Bind(first.Name, v)
		subCombos, err := ev.generateCombos(iters[1:], childEnv)
		if err != nil {
			return nil, err
		}
		for _, sc := range subCombos {
			merged := append([]binding{{name: first.Name, value: v}}, sc...)
			combos = append(combos, merged)
		}
	}
	return combos, nil
}

func (ev *Evaluator) iterationValues(it Iterator, env *Environment) ([]Value, error) {
	if it.RangeUpper != nil {
		lowV, err := ev.Eval(it.Source, env)
		if err != nil {
			return nil, err
		}
		highV, err := ev.Eval(it.RangeUpper, env)
		if err != nil {
			return nil, err
		}
		lowN, ok1 := lowV.AsNumber()
		highN, ok2 := highV.AsNumber()
		if !ok1 || !ok2 {
			return nil, errType("for range bounds must be numbers")
		}
		return expandNumericRange(lowN, highN)
	}
	srcV, err := ev.Eval(it.Source, env)
	if err != nil {
		return nil, err
	}
	if srcV.IsNull() {
		return nil, nil
	}
	if items, ok := srcV.AsList(); ok {
		return items, nil
	}
	return []Value{srcV}, nil
}

func expandNumericRange(low, high *apd.Decimal) ([]Value, error) {
	loI, err := low.Int64()
	if err != nil {
		return nil, errType("for range bounds must be integers")
	}
	hiI, err := high.Int64()
	if err != nil {
		return nil, errType("for range bounds must be integers")
	}
	var out []Value
	if loI <= hiI {
		for i := loI; i <= hiI; i++ {
			out = append(out, NumberFromInt64(i))
		}
	} else {
		for i := loI; i >= hiI; i-- {
			out = append(out, NumberFromInt64(i))
		}
	}
	return out, nil
}
