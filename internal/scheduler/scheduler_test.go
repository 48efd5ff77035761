package scheduler

import (
	"testing"

	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/model"
)

func buildChain(t *testing.T) *model.Definition {
	t.Helper()
	b := model.NewBuilder()
	if err := b.AddInput("age", feel.TypeNumber); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if err := b.AddExpressionDecision("A", "a", feel.TypeBoolean, "age >= 18", []string{"age"}); err != nil {
		t.Fatalf("AddExpressionDecision A: %v", err)
	}
	if err := b.AddExpressionDecision("B", "b", feel.TypeString, `if A then "x" else "y"`, []string{"A"}); err != nil {
		t.Fatalf("AddExpressionDecision B: %v", err)
	}
	if err := b.AddExpressionDecision("C", "c", feel.TypeString, `B`, []string{"B"}); err != nil {
		t.Fatalf("AddExpressionDecision C: %v", err)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestPlanOrdersDependenciesBeforeDependents(t *testing.T) {
	def := buildChain(t)
	plan, err := Plan(def, []string{"C"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("expected A, B, C in the plan, got %v", plan)
	}
	pos := map[string]int{}
	for i, name := range plan {
		pos[name] = i
	}
	if pos["A"] > pos["B"] || pos["B"] > pos["C"] {
		t.Errorf("expected order A, B, C, got %v", plan)
	}
}

func TestPlanUnionsSharedSubDecisions(t *testing.T) {
	def := buildChain(t)
	plan, err := Plan(def, []string{"B", "C"})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	count := map[string]int{}
	for _, name := range plan {
		count[name]++
	}
	if count["B"] != 1 {
		t.Errorf("expected B to appear exactly once in a union plan, got %d", count["B"])
	}
}

func TestPlanRejectsUnknownTarget(t *testing.T) {
	def := buildChain(t)
	if _, err := Plan(def, []string{"Nonexistent"}); err == nil {
		t.Fatal("expected an UnknownDecision error")
	}
}
