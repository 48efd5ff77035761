// Package engine orchestrates the scheduler, execution context, model,
// and FEEL evaluator into the evaluate/evaluate-all-roots surface.
package engine

import (
	"fmt"

	execctx "github.com/ritamzico/dmnfeel/internal/context"
	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/model"
	"github.com/ritamzico/dmnfeel/internal/scheduler"
	"github.com/ritamzico/dmnfeel/internal/table"
)

// EngineError mirrors the {Kind, Message} idiom used throughout the
// codebase for failures that are about the evaluation run itself
// (unbound inputs, missing target) rather than table/FEEL evaluation.
type EngineError struct {
	Kind    string
	Message string
}

func (e EngineError) Error() string {
	return fmt.Sprintf("evaluation error (%s): %s", e.Kind, e.Message)
}

// EvaluationResult is the result of one evaluate/evaluate-all-roots
// call: every bound output variable produced during the pass, plus the
// trace recorded while producing them.
type EvaluationResult struct {
	Outputs map[string]feel.Value
	Trace   *execctx.Trace
}

// Engine evaluates decisions from an immutable Definition. A Definition
// may be shared across concurrently running Engines without locking;
// each call below owns its own Context and Trace.
type Engine struct {
	Definition *model.Definition
}

// New returns an Engine over def.
func New(def *model.Definition) *Engine {
	return &Engine{Definition: def}
}

// Evaluate runs every decision required to produce target, binding
// inputBindings as the initial environment.
func (e *Engine) Evaluate(target string, inputBindings map[string]feel.Value) (EvaluationResult, error) {
	return e.run([]string{target}, inputBindings)
}

// EvaluateAllRoots runs every root decision in the definition in one
// pass, unioning their transitive closures so shared sub-decisions
// evaluate exactly once.
func (e *Engine) EvaluateAllRoots(inputBindings map[string]feel.Value) (EvaluationResult, error) {
	if len(e.Definition.Roots) == 0 {
		return EvaluationResult{}, EngineError{Kind: "NoRoots", Message: "definition has no root decisions"}
	}
	return e.run(e.Definition.Roots, inputBindings)
}

func (e *Engine) run(targets []string, inputBindings map[string]feel.Value) (EvaluationResult, error) {
	plan, err := scheduler.Plan(e.Definition, targets)
	if err != nil {
		return EvaluationResult{}, err
	}

	ctx := execctx.New()
	for name, v := range inputBindings {
		ctx.Set(name, v)
	}

	trace := execctx.NewTrace()
	ev := feel.NewEvaluator()
	ev.Version = e.Definition.Version

	for _, name := range plan {
		dec, _ := e.Definition.Decision(name)
		if _, bound := ctx.Get(dec.OutputVariable); bound {
			continue // one-shot per decision output
		}
		outputs, err := e.evaluateDecision(ev, dec, ctx)
		if err != nil {
			trace.Append(execctx.Step{Decision: name, Err: err})
			return EvaluationResult{}, err
		}
		ctx.Set(dec.OutputVariable, outputs)
		trace.Append(execctx.Step{Decision: name, Outputs: map[string]feel.Value{dec.OutputVariable: outputs}})
		for _, w := range ev.Warnings {
			trace.Warn(w)
		}
		ev.Warnings = ev.Warnings[:0]
	}

	out := make(map[string]feel.Value, len(plan))
	for _, name := range plan {
		dec, _ := e.Definition.Decision(name)
		if v, ok := ctx.Get(dec.OutputVariable); ok {
			out[dec.OutputVariable] = v
		}
	}
	return EvaluationResult{Outputs: out, Trace: trace}, nil
}

func (e *Engine) evaluateDecision(ev *feel.Evaluator, dec *model.Decision, ctx *execctx.Context) (feel.Value, error) {
	switch dec.Kind {
	case model.ExpressionDecision:
		return ev.Eval(dec.Expression, ctx.Env())
	case model.TableDecision:
		res, err := table.Evaluate(ev, dec.Table, dec.Name, ctx.Env())
		if err != nil {
			return feel.Null, err
		}
		return tableResultToValue(dec.Table, res), nil
	default:
		return feel.Null, EngineError{Kind: "UnknownDecisionKind", Message: fmt.Sprintf("decision %q has an unrecognized kind", dec.Name)}
	}
}

// tableResultToValue collapses a table.Result into a single FEEL
// Value: a single-output row collapses to a bare value and a
// multi-output row becomes a Context. Rule-order and Collect without an
// aggregator always yield a list of such values (empty when no rule
// matched); for the other policies a single row yields its value and
// no row yields Null.
func tableResultToValue(tbl *model.DecisionTable, res table.Result) feel.Value {
	rowToValue := func(row table.Row) feel.Value {
		if len(tbl.Outputs) == 1 {
			return row[tbl.Outputs[0].Name]
		}
		c := feel.NewContext()
		for _, oc := range tbl.Outputs {
			c.Set(oc.Name, row[oc.Name])
		}
		return feel.ContextVal(c)
	}

	if tbl.Policy == model.RuleOrder || (tbl.Policy == model.Collect && tbl.Aggregator == model.NoAggregator) {
		items := make([]feel.Value, len(res.Rows))
		for i, row := range res.Rows {
			items[i] = rowToValue(row)
		}
		return feel.List(items)
	}

	switch len(res.Rows) {
	case 0:
		return feel.Null
	case 1:
		return rowToValue(res.Rows[0])
	default:
		items := make([]feel.Value, len(res.Rows))
		for i, row := range res.Rows {
			items[i] = rowToValue(row)
		}
		return feel.List(items)
	}
}
