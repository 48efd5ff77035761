package feel

import "testing"

func mustParse(t *testing.T, src string) Expr {
	t.Helper()
	e, err := ParseExpression(src)
	if err != nil {
		t.Fatalf("ParseExpression(%q): %v", src, err)
	}
	return e
}

func TestParseArithmeticPrecedence(t *testing.T) {
	e := mustParse(t, "1 + 2 * 3")
	bin, ok := e.(BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+', got %#v", e)
	}
	rhs, ok := bin.Right.(BinaryExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected '*' nested under '+', got %#v", bin.Right)
	}
}

func TestParseExponentRightAssociative(t *testing.T) {
	e := mustParse(t, "2 ** 3 ** 2")
	bin, ok := e.(BinaryExpr)
	if !ok || bin.Op != "**" {
		t.Fatalf("expected '**', got %#v", e)
	}
	if _, ok := bin.Right.(BinaryExpr); !ok {
		t.Fatalf("expected right-associative nesting, got %#v", bin.Right)
	}
	if _, ok := bin.Left.(LiteralExpr); !ok {
		t.Fatalf("expected literal on the left, got %#v", bin.Left)
	}
}

func TestParseMultiWordNameRef(t *testing.T) {
	e := mustParse(t, "Full Legal Name")
	ref, ok := e.(NameRefExpr)
	if !ok {
		t.Fatalf("expected NameRefExpr, got %#v", e)
	}
	if ref.Raw != "Full Legal Name" {
		t.Errorf("got Raw %q, want %q", ref.Raw, "Full Legal Name")
	}
}

func TestParseIfThenElse(t *testing.T) {
	e := mustParse(t, "if age >= 18 then \"adult\" else \"minor\"")
	ifE, ok := e.(IfExpr)
	if !ok {
		t.Fatalf("expected IfExpr, got %#v", e)
	}
	if _, ok := ifE.Cond.(BinaryExpr); !ok {
		t.Errorf("expected condition to be a comparison, got %#v", ifE.Cond)
	}
}

func TestParseForExpression(t *testing.T) {
	e := mustParse(t, "for x in [1,2,3] return x * 2")
	forE, ok := e.(ForExpr)
	if !ok {
		t.Fatalf("expected ForExpr, got %#v", e)
	}
	if len(forE.Iterators) != 1 || forE.Iterators[0].Name != "x" {
		t.Fatalf("unexpected iterators: %#v", forE.Iterators)
	}
}

func TestParseQuantifiedSome(t *testing.T) {
	e := mustParse(t, "some x in [1,2,3] satisfies x > 2")
	q, ok := e.(QuantifiedExpr)
	if !ok || q.Kind != "some" {
		t.Fatalf("expected QuantifiedExpr(some), got %#v", e)
	}
}

func TestParseListAndContextLiterals(t *testing.T) {
	e := mustParse(t, `{a: 1, b: [2,3]}`)
	ctx, ok := e.(ContextExpr)
	if !ok {
		t.Fatalf("expected ContextExpr, got %#v", e)
	}
	if len(ctx.Keys) != 2 || ctx.Keys[0] != "a" || ctx.Keys[1] != "b" {
		t.Fatalf("unexpected keys: %#v", ctx.Keys)
	}
	if _, ok := ctx.Values[1].(ListExpr); !ok {
		t.Fatalf("expected list literal for b, got %#v", ctx.Values[1])
	}
}

func TestParseFunctionCall(t *testing.T) {
	e := mustParse(t, `string length("hello")`)
	call, ok := e.(CallExpr)
	if !ok {
		t.Fatalf("expected CallExpr, got %#v", e)
	}
	callee, ok := call.Callee.(NameRefExpr)
	if !ok || callee.Raw != "string length" {
		t.Fatalf("expected callee 'string length', got %#v", call.Callee)
	}
}

func TestParseUnaryTestWildcard(t *testing.T) {
	ut, err := ParseUnaryTests("-")
	if err != nil {
		t.Fatalf("ParseUnaryTests: %v", err)
	}
	if _, ok := ut.(UTAny); !ok {
		t.Fatalf("expected UTAny, got %#v", ut)
	}
}

func TestParseUnaryTestRange(t *testing.T) {
	ut, err := ParseUnaryTests("[1..10]")
	if err != nil {
		t.Fatalf("ParseUnaryTests: %v", err)
	}
	r, ok := ut.(UTRange)
	if !ok {
		t.Fatalf("expected UTRange, got %#v", ut)
	}
	if !r.LowInclusive || !r.HighInclusive {
		t.Errorf("expected inclusive range, got %#v", r)
	}
}

func TestParseUnaryTestDisjunction(t *testing.T) {
	ut, err := ParseUnaryTests(`"gold", "silver"`)
	if err != nil {
		t.Fatalf("ParseUnaryTests: %v", err)
	}
	disj, ok := ut.(UTDisjunction)
	if !ok || len(disj.Tests) != 2 {
		t.Fatalf("expected a 2-way disjunction, got %#v", ut)
	}
}
