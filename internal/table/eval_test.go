package table

import (
	"testing"

	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/model"
)

func buildTable(t *testing.T, b *model.Builder, name string, policy model.HitPolicy, agg model.Aggregator,
	inputs []model.InputColumn, outputs []model.OutputColumn, rules []model.RuleSpec) *model.DecisionTable {
	t.Helper()
	if err := b.AddTableDecision(name, "out", feel.TypeString, policy, agg, inputs, outputs, rules, nil); err != nil {
		t.Fatalf("AddTableDecision: %v", err)
	}
	def, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dec, _ := def.Decision(name)
	return dec.Table
}

func TestEvaluateCollectSumAggregatesAcrossMatches(t *testing.T) {
	b := model.NewBuilder()
	tbl := buildTable(t, b, "Amounts", model.Collect, model.AggSum,
		[]model.InputColumn{{ExpressionText: "Region", Type: feel.TypeString}},
		[]model.OutputColumn{{Name: "Amount", Type: feel.TypeNumber}},
		[]model.RuleSpec{
			{ID: "1", Tests: []string{`"EU"`}, Outputs: []string{"10"}},
			{ID: "2", Tests: []string{`"EU"`}, Outputs: []string{"5"}},
			{ID: "3", Tests: []string{`"US"`}, Outputs: []string{"7"}},
		})

	env := feel.NewEnvironment()
	env.Bind("Region", feel.String("EU"))
	result, err := Evaluate(feel.NewEvaluator(), tbl, "Amounts", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	row := result.Single()
	n, ok := row["Amount"].AsNumber()
	if !ok || n.String() != "15" {
		t.Errorf("got %v, want 15", row["Amount"])
	}
}

func TestEvaluatePriorityRanksByAllowedValueOrder(t *testing.T) {
	b := model.NewBuilder()
	tbl := buildTable(t, b, "Medal", model.Priority, model.NoAggregator,
		[]model.InputColumn{{ExpressionText: "score", Type: feel.TypeNumber}},
		[]model.OutputColumn{{Name: "medal", Type: feel.TypeString, AllowedValues: []string{`"gold"`, `"silver"`, `"bronze"`}}},
		[]model.RuleSpec{
			{ID: "1", Tests: []string{"[0..100]"}, Outputs: []string{`"bronze"`}},
			{ID: "2", Tests: []string{"[0..100]"}, Outputs: []string{`"gold"`}},
		})

	env := feel.NewEnvironment()
	env.Bind("score", feel.NumberFromInt64(90))
	result, err := Evaluate(feel.NewEvaluator(), tbl, "Medal", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	s, ok := result.Single()["medal"].AsString()
	if !ok || s != "gold" {
		t.Errorf("got %v, want gold", result.Single()["medal"])
	}
}

func TestEvaluateUniqueViolationOnMultipleMatches(t *testing.T) {
	b := model.NewBuilder()
	tbl := buildTable(t, b, "U", model.Unique, model.NoAggregator,
		[]model.InputColumn{{ExpressionText: "x", Type: feel.TypeNumber}},
		[]model.OutputColumn{{Name: "out", Type: feel.TypeString}},
		[]model.RuleSpec{
			{ID: "1", Tests: []string{"[0..10]"}, Outputs: []string{`"a"`}},
			{ID: "2", Tests: []string{"[5..15]"}, Outputs: []string{`"b"`}},
		})

	env := feel.NewEnvironment()
	env.Bind("x", feel.NumberFromInt64(7))
	_, err := Evaluate(feel.NewEvaluator(), tbl, "U", env)
	if err == nil {
		t.Fatal("expected a HitPolicyViolation error")
	}
}

func TestEvaluateFirstReturnsLowestIndexMatch(t *testing.T) {
	b := model.NewBuilder()
	tbl := buildTable(t, b, "F", model.First, model.NoAggregator,
		[]model.InputColumn{{ExpressionText: "x", Type: feel.TypeNumber}},
		[]model.OutputColumn{{Name: "out", Type: feel.TypeString}},
		[]model.RuleSpec{
			{ID: "1", Tests: []string{"[0..10]"}, Outputs: []string{`"a"`}},
			{ID: "2", Tests: []string{"[5..15]"}, Outputs: []string{`"b"`}},
		})

	env := feel.NewEnvironment()
	env.Bind("x", feel.NumberFromInt64(7))
	result, err := Evaluate(feel.NewEvaluator(), tbl, "F", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	s, _ := result.Single()["out"].AsString()
	if s != "a" {
		t.Errorf("got %q, want \"a\"", s)
	}
}

func TestEvaluateUnboundInputResolvesToNullInsteadOfErroring(t *testing.T) {
	b := model.NewBuilder()
	tbl := buildTable(t, b, "Unbound", model.Unique, model.NoAggregator,
		[]model.InputColumn{{ExpressionText: "Pocet", Type: feel.TypeNumber}},
		[]model.OutputColumn{{Name: "out", Type: feel.TypeString, DefaultText: `"default"`}},
		[]model.RuleSpec{
			{ID: "1", Tests: []string{"5"}, Outputs: []string{`"five"`}},
		})

	// Pocet is never bound into env: an input-clause reference to it
	// must resolve to Null rather than raising UnknownName and
	// aborting the table.
	env := feel.NewEnvironment()
	result, err := Evaluate(feel.NewEvaluator(), tbl, "Unbound", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	s, _ := result.Single()["out"].AsString()
	if s != "default" {
		t.Errorf("got %q, want \"default\"", s)
	}
}

func TestEvaluateNoMatchUsesDefault(t *testing.T) {
	b := model.NewBuilder()
	tbl := buildTable(t, b, "D", model.Unique, model.NoAggregator,
		[]model.InputColumn{{ExpressionText: "x", Type: feel.TypeNumber}},
		[]model.OutputColumn{{Name: "out", Type: feel.TypeString, DefaultText: `"none"`}},
		[]model.RuleSpec{
			{ID: "1", Tests: []string{"[0..10]"}, Outputs: []string{`"a"`}},
		})

	env := feel.NewEnvironment()
	env.Bind("x", feel.NumberFromInt64(99))
	result, err := Evaluate(feel.NewEvaluator(), tbl, "D", env)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	s, _ := result.Single()["out"].AsString()
	if s != "none" {
		t.Errorf("got %q, want \"none\"", s)
	}
}
