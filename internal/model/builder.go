package model

import (
	"fmt"

	"github.com/ritamzico/dmnfeel/internal/feel"
)

// InputColumn describes one input clause of a table decision before
// parsing: the FEEL expression text evaluated against the execution
// context and its declared type.
type InputColumn struct {
	ExpressionText string
	Type           *feel.Type
}

// OutputColumn describes one output clause of a table decision before
// parsing.
type OutputColumn struct {
	Name          string
	Type          *feel.Type
	AllowedValues []string // FEEL literal expressions, e.g. `"gold"`
	DefaultText   string   // FEEL expression text; empty means no default
}

// RuleSpec describes one table row before parsing: one unary-test
// string per input column (empty or "-" means wildcard) and one FEEL
// expression string per output column.
type RuleSpec struct {
	ID      string
	Tests   []string
	Outputs []string
}

// Builder assembles a Definition the way graph.ProbabilisticAdjacencyListGraph
// assembles a graph: validate before mutating, accumulate into private
// maps, and only hand back an immutable value from Build.
type Builder struct {
	inputs      map[string]*Variable
	decisions   map[string]*Decision
	declOrder   []string // decision names in declaration order
	requiredOf  map[string][]string
	parseErrors []error
	version     string
}

func NewBuilder() *Builder {
	return &Builder{
		inputs:     make(map[string]*Variable),
		decisions:  make(map[string]*Decision),
		requiredOf: make(map[string][]string),
	}
}

// SetVersion records the model's declared DMN version, surfaced later
// as Definition.Version. Readers that have no such notion (or whose
// source model didn't declare one) can leave it unset.
func (b *Builder) SetVersion(v string) {
	b.version = v
}

// AddInput registers an input variable.
func (b *Builder) AddInput(name string, t *feel.Type) error {
	if _, exists := b.inputs[name]; exists {
		return errDuplicateName("input", name)
	}
	if _, exists := b.decisions[name]; exists {
		return errDuplicateName("input", name)
	}
	b.inputs[name] = NewVariable(name, t, true)
	return nil
}

// AddExpressionDecision registers a decision backed by a single FEEL
// expression.
func (b *Builder) AddExpressionDecision(name, outputVar string, t *feel.Type, expressionText string, required []string) error {
	if err := b.checkNewDecisionName(name); err != nil {
		return err
	}
	expr, err := feel.ParseExpression(expressionText)
	if err != nil {
		return errParse("decision %q: %v", name, err)
	}
	b.decisions[name] = &Decision{
		Name:           name,
		NormalizedName: Normalize(name),
		OutputVariable: outputVar,
		OutputType:     t,
		Kind:           ExpressionDecision,
		Expression:     expr,
	}
	b.requiredOf[name] = required
	b.declOrder = append(b.declOrder, name)
	return nil
}

// AddTableDecision registers a decision backed by a decision table.
func (b *Builder) AddTableDecision(name, outputVar string, t *feel.Type, policy HitPolicy, agg Aggregator,
	inputs []InputColumn, outputs []OutputColumn, rules []RuleSpec, required []string) error {
	if err := b.checkNewDecisionName(name); err != nil {
		return err
	}
	if policy != Collect && agg != NoAggregator {
		return errHitPolicy(name, "an aggregator is only valid with COLLECT")
	}
	if policy == Priority {
		for _, oc := range outputs {
			if len(oc.AllowedValues) == 0 {
				return errHitPolicy(name, fmt.Sprintf("output %q needs a non-empty allowed-value list to rank by priority", oc.Name))
			}
		}
	}

	parsedInputs := make([]InputClause, len(inputs))
	for i, ic := range inputs {
		expr, err := feel.ParseExpression(ic.ExpressionText)
		if err != nil {
			return errParse("decision %q input clause %d: %v", name, i, err)
		}
		parsedInputs[i] = InputClause{Expression: expr, Type: ic.Type}
	}

	parsedOutputs := make([]OutputClause, len(outputs))
	for i, oc := range outputs {
		allowed, err := parseLiteralValues(oc.AllowedValues)
		if err != nil {
			return errParse("decision %q output clause %q: %v", name, oc.Name, err)
		}
		var def feel.Expr
		if oc.DefaultText != "" {
			def, err = feel.ParseExpression(oc.DefaultText)
			if err != nil {
				return errParse("decision %q output clause %q default: %v", name, oc.Name, err)
			}
		}
		parsedOutputs[i] = OutputClause{Name: oc.Name, Type: oc.Type, AllowedValues: allowed, Default: def}
	}

	parsedRules := make([]Rule, len(rules))
	for ri, rs := range rules {
		if len(rs.Tests) != len(inputs) || len(rs.Outputs) != len(outputs) {
			return errArityMismatch(name, rs.ID, len(inputs), len(rs.Tests), len(outputs), len(rs.Outputs))
		}
		tests := make([]feel.UnaryTest, len(rs.Tests))
		for i, txt := range rs.Tests {
			if txt == "" {
				txt = "-"
			}
			ut, err := feel.ParseUnaryTests(txt)
			if err != nil {
				return errParse("decision %q rule %q cell %d: %v", name, rs.ID, i, err)
			}
			tests[i] = ut
		}
		outs := make([]feel.Expr, len(rs.Outputs))
		for i, txt := range rs.Outputs {
			expr, err := feel.ParseExpression(txt)
			if err != nil {
				return errParse("decision %q rule %q output %d: %v", name, rs.ID, i, err)
			}
			outs[i] = expr
		}
		parsedRules[ri] = Rule{ID: rs.ID, Inputs: tests, Outputs: outs}
	}

	b.decisions[name] = &Decision{
		Name:           name,
		NormalizedName: Normalize(name),
		OutputVariable: outputVar,
		OutputType:     t,
		Kind:           TableDecision,
		Table: &DecisionTable{
			Inputs:     parsedInputs,
			Outputs:    parsedOutputs,
			Rules:      parsedRules,
			Policy:     policy,
			Aggregator: agg,
		},
	}
	b.requiredOf[name] = required
	b.declOrder = append(b.declOrder, name)
	return nil
}

func (b *Builder) checkNewDecisionName(name string) error {
	if _, exists := b.decisions[name]; exists {
		return errDuplicateName("decision", name)
	}
	if _, exists := b.inputs[name]; exists {
		return errDuplicateName("decision", name)
	}
	return nil
}

func parseLiteralValues(texts []string) ([]feel.Value, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ev := feel.NewEvaluator()
	env := feel.NewEnvironment()
	out := make([]feel.Value, len(texts))
	for i, txt := range texts {
		expr, err := feel.ParseExpression(txt)
		if err != nil {
			return nil, err
		}
		v, err := ev.Eval(expr, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Build resolves requirement references, detects cycles, computes a
// stable topological order and the set of root decisions, and returns
// an immutable Definition.
func (b *Builder) Build() (*Definition, error) {
	for name, dec := range b.decisions {
		for _, req := range b.requiredOf[name] {
			if _, isDecision := b.decisions[req]; isDecision {
				dec.RequiredDecisions = append(dec.RequiredDecisions, req)
				continue
			}
			if _, isInput := b.inputs[req]; isInput {
				dec.RequiredInputs = append(dec.RequiredInputs, req)
				continue
			}
			return nil, errUnresolvedRequirement(name, req)
		}
	}

	order, err := b.topologicalOrder()
	if err != nil {
		return nil, err
	}

	required := make(map[string]bool)
	for _, dec := range b.decisions {
		for _, req := range dec.RequiredDecisions {
			required[req] = true
		}
	}
	var roots []string
	for _, name := range b.declOrder {
		if !required[name] {
			roots = append(roots, name)
		}
	}
	if len(roots) == 0 && len(b.decisions) > 0 {
		return nil, errNoRoots()
	}

	return &Definition{
		Inputs:    b.inputs,
		Decisions: b.decisions,
		Version:   b.version,
		Roots:     roots,
		order:     order,
	}, nil
}

// topologicalOrder performs a stable DFS-based topological sort:
// siblings are visited in declaration order, and a decision's
// dependencies always precede it in the result.
func (b *Builder) topologicalOrder() ([]string, error) {
	const (
		white = iota
		gray
		black
	)
	color := make(map[string]int, len(b.decisions))
	var order []string
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return errCycle(append(append([]string{}, path...), name))
		}
		color[name] = gray
		path = append(path, name)
		dec := b.decisions[name]
		for _, req := range dec.RequiredDecisions {
			if err := visit(req); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		color[name] = black
		order = append(order, name)
		return nil
	}

	for _, name := range b.declOrder {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
