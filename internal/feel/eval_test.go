package feel

import "testing"

func evalStr(t *testing.T, src string, env *Environment) Value {
	t.Helper()
	if env == nil {
		env = NewEnvironment()
	}
	e, err := ParseExpression(src)
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", src, err)
	}
	v, err := NewEvaluator().Eval(e, env)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	v := evalStr(t, "1 + 2 * 3", nil)
	n, ok := v.AsNumber()
	if !ok {
		t.Fatalf("expected number, got %v", v.Kind())
	}
	if n.String() != "7" {
		t.Errorf("got %v, want 7", n)
	}
}

func TestEvalAdditionAssociative(t *testing.T) {
	a := evalStr(t, "(1 + 2) + 3", nil)
	b := evalStr(t, "1 + (2 + 3)", nil)
	if !Equal(a, b) {
		t.Errorf("addition not associative under evaluation: %v vs %v", a, b)
	}
}

func TestEvalDivisionByZeroIsNull(t *testing.T) {
	v := evalStr(t, "1 / 0", nil)
	if !v.IsNull() {
		t.Errorf("expected Null for division by zero, got %v", v)
	}
}

func TestEvalModuloByZeroIsError(t *testing.T) {
	e, err := ParseExpression("5 % 0")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	_, err = NewEvaluator().Eval(e, NewEnvironment())
	if err == nil {
		t.Fatal("expected an error for modulo by zero")
	}
}

func TestEvalComparisonWithNullIsNull(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", Null)
	v := evalStr(t, "x < 5", env)
	if !v.IsNull() {
		t.Errorf("expected Null comparing against Null, got %v", v)
	}
}

func TestEvalThreeValuedAnd(t *testing.T) {
	env := NewEnvironment()
	env.Bind("x", Null)
	if v := evalStr(t, "false and x", env); !Equal(v, Bool(false)) {
		t.Errorf("false and Null should be false, got %v", v)
	}
	v := evalStr(t, "true and x", env)
	if !v.IsNull() {
		t.Errorf("true and Null should be Null, got %v", v)
	}
}

func TestEvalIfThenElse(t *testing.T) {
	env := NewEnvironment()
	env.Bind("age", NumberFromInt64(20))
	v := evalStr(t, `if age >= 18 then "adult" else "minor"`, env)
	s, ok := v.AsString()
	if !ok || s != "adult" {
		t.Errorf("got %v, want \"adult\"", v)
	}
}

func TestEvalForWithPartial(t *testing.T) {
	v := evalStr(t, "for x in [1,2,3] return x + count(partial)", nil)
	items, ok := v.AsList()
	if !ok || len(items) != 3 {
		t.Fatalf("expected a 3-element list, got %v", v)
	}
	want := []int64{1, 3, 5} // x + count(partial): partial grows by one each iteration
	for i, item := range items {
		n, _ := item.AsNumber()
		i64, _ := n.Int64()
		if i64 != want[i] {
			t.Errorf("item %d: got %d, want %d", i, i64, want[i])
		}
	}
}

func TestEvalSomeEveryQuantified(t *testing.T) {
	if v := evalStr(t, "some x in [1,2,3] satisfies x > 2", nil); !Equal(v, Bool(true)) {
		t.Errorf("some: got %v, want true", v)
	}
	if v := evalStr(t, "every x in [1,2,3] satisfies x > 0", nil); !Equal(v, Bool(true)) {
		t.Errorf("every: got %v, want true", v)
	}
	v := evalStr(t, "every x in [1,2,3] satisfies x > 2", nil)
	if !v.IsNull() {
		t.Errorf("every (not all true) should be Null, got %v", v)
	}
}

func TestEvalUnaryTestWildcardMatchesNull(t *testing.T) {
	ut, err := ParseUnaryTests("-")
	if err != nil {
		t.Fatalf("ParseUnaryTests: %v", err)
	}
	ok, err := NewLenientEvaluator().EvalUnaryTest(ut, Null, NewEnvironment())
	if err != nil {
		t.Fatalf("EvalUnaryTest: %v", err)
	}
	if !ok {
		t.Error("expected wildcard unary test to match Null")
	}
}

func TestEvalUnaryTestRange(t *testing.T) {
	ut, err := ParseUnaryTests("[1..10]")
	if err != nil {
		t.Fatalf("ParseUnaryTests: %v", err)
	}
	ev := NewLenientEvaluator()
	ok, err := ev.EvalUnaryTest(ut, NumberFromInt64(5), NewEnvironment())
	if err != nil || !ok {
		t.Errorf("expected 5 to match [1..10], ok=%v err=%v", ok, err)
	}
	ok, err = ev.EvalUnaryTest(ut, NumberFromInt64(11), NewEnvironment())
	if err != nil || ok {
		t.Errorf("expected 11 not to match [1..10], ok=%v err=%v", ok, err)
	}
}

func TestEvalUnknownNameStrictVsLenient(t *testing.T) {
	e, err := ParseExpression("missing + 1")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	if _, err := NewEvaluator().Eval(e, NewEnvironment()); err == nil {
		t.Error("expected strict evaluator to raise an error for an unresolved name")
	}
	v, err := NewLenientEvaluator().Eval(e, NewEnvironment())
	if err != nil {
		t.Fatalf("lenient Eval: %v", err)
	}
	if !v.IsNull() {
		t.Errorf("expected Null from lenient evaluation, got %v", v)
	}
}

func TestEvalMultiWordNameResolution(t *testing.T) {
	env := NewEnvironment()
	env.Bind("Full Legal Name", String("Ada Lovelace"))
	v := evalStr(t, "Full Legal Name", env)
	s, ok := v.AsString()
	if !ok || s != "Ada Lovelace" {
		t.Errorf("got %v, want \"Ada Lovelace\"", v)
	}
}

func TestEvalFilterByIndexAndPredicate(t *testing.T) {
	env := NewEnvironment()
	env.Bind("nums", List([]Value{NumberFromInt64(10), NumberFromInt64(20), NumberFromInt64(30)}))
	v := evalStr(t, "nums[2]", env)
	n, _ := v.AsNumber()
	i64, _ := n.Int64()
	if i64 != 20 {
		t.Errorf("indexed filter: got %d, want 20", i64)
	}

	v = evalStr(t, "nums[item > 15]", env)
	items, ok := v.AsList()
	if !ok || len(items) != 2 {
		t.Fatalf("predicate filter: got %v", v)
	}
}

func TestEvalBuiltinStringFunctions(t *testing.T) {
	v := evalStr(t, `string length("hello")`, nil)
	n, _ := v.AsNumber()
	i64, _ := n.Int64()
	if i64 != 5 {
		t.Errorf("string length: got %d, want 5", i64)
	}

	v = evalStr(t, `upper case("abc")`, nil)
	s, _ := v.AsString()
	if s != "ABC" {
		t.Errorf("upper case: got %q, want ABC", s)
	}
}

func TestEvalBuiltinListAggregation(t *testing.T) {
	v := evalStr(t, "sum([1,2,3])", nil)
	n, _ := v.AsNumber()
	if n.String() != "6" {
		t.Errorf("sum: got %v, want 6", n)
	}

	v = evalStr(t, "count([1,2,3])", nil)
	n, _ = v.AsNumber()
	if n.String() != "3" {
		t.Errorf("count: got %v, want 3", n)
	}
}

func TestEvalContextLiteralAndMemberAccess(t *testing.T) {
	v := evalStr(t, `{ a: 1, b: a + 1 }.b`, nil)
	n, _ := v.AsNumber()
	if n.String() != "2" {
		t.Errorf("context member access: got %v, want 2", n)
	}
}

func TestEvalUserDefinedFunction(t *testing.T) {
	env := NewEnvironment()
	fnExpr, err := ParseExpression("function(a, b) a + b")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	fnVal, err := NewEvaluator().Eval(fnExpr, env)
	if err != nil {
		t.Fatalf("Eval function literal: %v", err)
	}
	env.Bind("add", fnVal)
	v := evalStr(t, "add(2, 3)", env)
	n, _ := v.AsNumber()
	if n.String() != "5" {
		t.Errorf("user function call: got %v, want 5", n)
	}
}
