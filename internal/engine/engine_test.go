package engine

import (
	"strings"
	"testing"

	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/model"
)

func buildGreetingDefinition(t *testing.T) *model.Definition {
	t.Helper()
	b := model.NewBuilder()
	if err := b.AddInput("age", feel.TypeNumber); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if err := b.AddExpressionDecision("Is Adult", "is_adult", feel.TypeBoolean, "age >= 18", []string{"age"}); err != nil {
		t.Fatalf("AddExpressionDecision Is Adult: %v", err)
	}
	if err := b.AddExpressionDecision("Greeting", "greeting", feel.TypeString,
		`if is_adult then "welcome" else "sorry, minors only"`, []string{"is_adult"}); err != nil {
		t.Fatalf("AddExpressionDecision Greeting: %v", err)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return def
}

func TestEngineEvaluateChainOfExpressionDecisions(t *testing.T) {
	def := buildGreetingDefinition(t)
	e := New(def)

	res, err := e.Evaluate("Greeting", map[string]feel.Value{"age": feel.NumberFromInt64(25)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	greeting, ok := res.Outputs["greeting"].AsString()
	if !ok || greeting != "welcome" {
		t.Errorf("got %v, want welcome", res.Outputs["greeting"])
	}
	if len(res.Trace.Steps) != 2 {
		t.Errorf("expected 2 trace steps (Is Adult, Greeting), got %d", len(res.Trace.Steps))
	}
}

func TestEngineEvaluateAllRootsSharesSubDecisionOnce(t *testing.T) {
	b := model.NewBuilder()
	if err := b.AddInput("age", feel.TypeNumber); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	if err := b.AddExpressionDecision("Is Adult", "is_adult", feel.TypeBoolean, "age >= 18", []string{"age"}); err != nil {
		t.Fatalf("AddExpressionDecision Is Adult: %v", err)
	}
	if err := b.AddExpressionDecision("Greeting", "greeting", feel.TypeString,
		`if is_adult then "welcome" else "sorry"`, []string{"is_adult"}); err != nil {
		t.Fatalf("AddExpressionDecision Greeting: %v", err)
	}
	if err := b.AddExpressionDecision("Access Level", "access_level", feel.TypeString,
		`if is_adult then "full" else "restricted"`, []string{"is_adult"}); err != nil {
		t.Fatalf("AddExpressionDecision Access Level: %v", err)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e := New(def)
	res, err := e.EvaluateAllRoots(map[string]feel.Value{"age": feel.NumberFromInt64(10)})
	if err != nil {
		t.Fatalf("EvaluateAllRoots: %v", err)
	}
	if len(res.Trace.Steps) != 3 {
		t.Fatalf("expected is_adult evaluated once across both roots (3 steps total), got %d", len(res.Trace.Steps))
	}
	greeting, _ := res.Outputs["greeting"].AsString()
	access, _ := res.Outputs["access_level"].AsString()
	if greeting != "sorry" || access != "restricted" {
		t.Errorf("got greeting=%q access_level=%q, want sorry/restricted", greeting, access)
	}
}

func TestEngineEvaluateTableDecision(t *testing.T) {
	b := model.NewBuilder()
	if err := b.AddInput("age", feel.TypeNumber); err != nil {
		t.Fatalf("AddInput: %v", err)
	}
	err := b.AddTableDecision("Tier", "tier", feel.TypeString, model.Unique, model.NoAggregator,
		[]model.InputColumn{{ExpressionText: "age", Type: feel.TypeNumber}},
		[]model.OutputColumn{{Name: "tier", Type: feel.TypeString}},
		[]model.RuleSpec{
			{ID: "1", Tests: []string{"[0..17]"}, Outputs: []string{`"minor"`}},
			{ID: "2", Tests: []string{"[18..999]"}, Outputs: []string{`"adult"`}},
		},
		[]string{"age"})
	if err != nil {
		t.Fatalf("AddTableDecision: %v", err)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e := New(def)
	res, err := e.Evaluate("Tier", map[string]feel.Value{"age": feel.NumberFromInt64(30)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	tier, ok := res.Outputs["tier"].AsString()
	if !ok || tier != "adult" {
		t.Errorf("got %v, want adult", res.Outputs["tier"])
	}
}

func TestEngineEvaluateWarnsOnTemporalLiteralUnderPre14Version(t *testing.T) {
	b := model.NewBuilder()
	b.SetVersion("1.2")
	if err := b.AddExpressionDecision("Epoch", "epoch", feel.TypeDate, `@"2020-01-01"`, nil); err != nil {
		t.Fatalf("AddExpressionDecision: %v", err)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e := New(def)
	res, err := e.Evaluate("Epoch", nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Trace.Steps) != 1 || len(res.Trace.Steps[0].Warnings) != 1 {
		t.Fatalf("expected exactly one warning on the one trace step, got %+v", res.Trace.Steps)
	}
	if !strings.Contains(res.Trace.Steps[0].Warnings[0], "VersionMismatch") {
		t.Errorf("warning %q does not mention VersionMismatch", res.Trace.Steps[0].Warnings[0])
	}
}

func TestEngineEvaluateNoWarningWhenVersionUnset(t *testing.T) {
	b := model.NewBuilder()
	if err := b.AddExpressionDecision("Epoch", "epoch", feel.TypeDate, `@"2020-01-01"`, nil); err != nil {
		t.Fatalf("AddExpressionDecision: %v", err)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e := New(def)
	res, err := e.Evaluate("Epoch", nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Trace.Steps[0].Warnings) != 0 {
		t.Errorf("expected no warnings for an undeclared version, got %v", res.Trace.Steps[0].Warnings)
	}
}

func TestEngineEvaluateConcurrentBatches(t *testing.T) {
	def := buildGreetingDefinition(t)
	e := New(def)

	batches := []map[string]feel.Value{
		{"age": feel.NumberFromInt64(10)},
		{"age": feel.NumberFromInt64(20)},
		{"age": feel.NumberFromInt64(30)},
	}
	results, err := e.EvaluateConcurrent("Greeting", batches)
	if err != nil {
		t.Fatalf("EvaluateConcurrent: %v", err)
	}
	want := []string{"sorry, minors only", "welcome", "welcome"}
	for i, res := range results {
		got, _ := res.Outputs["greeting"].AsString()
		if got != want[i] {
			t.Errorf("batch %d: got %q, want %q", i, got, want[i])
		}
	}
}
