package table

import (
	"github.com/cockroachdb/apd/v3"

	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/model"
)

// Row maps output-clause name to its evaluated Value. It is a map and
// keeps no clause order; use the table's Outputs for ordering.
type Row map[string]feel.Value

// Result holds zero or more output rows, in the order the hit policy
// produced them. Single-result hit policies
// (Unique, Any, First, Priority) always return exactly one row.
type Result struct {
	Rows []Row
}

// Single returns the lone row of a single-result table, or an empty
// row if the table produced none.
func (r Result) Single() Row {
	if len(r.Rows) == 0 {
		return Row{}
	}
	return r.Rows[0]
}

type match struct {
	ruleIndex int
	row       Row
}

// Evaluate evaluates the input vector, tests every rule against it,
// collects the matching set, and applies the table's hit policy to
// produce the final Result.
func Evaluate(ev *feel.Evaluator, tbl *model.DecisionTable, decisionName string, env *feel.Environment) (Result, error) {
	// Input-clause expressions are input-test targets: an unresolved
	// name (an input left unbound by the caller) yields Null rather
	// than aborting the table, so evaluate them leniently just like
	// the unary tests they feed.
	lenient := feel.NewLenientEvaluator()
	lenient.Version = ev.Version
	inputVals := make([]feel.Value, len(tbl.Inputs))
	for i, ic := range tbl.Inputs {
		v, err := lenient.Eval(ic.Expression, env)
		if err != nil {
			return Result{}, err
		}
		inputVals[i] = v
	}

	var matches []match
	for ri, rule := range tbl.Rules {
		if !ruleMatches(lenient, rule, inputVals, env) {
			continue
		}
		row, err := evalOutputRow(ev, tbl, rule, env)
		if err != nil {
			return Result{}, err
		}
		matches = append(matches, match{ruleIndex: ri, row: row})
	}
	ev.Warnings = append(ev.Warnings, lenient.Warnings...)

	return applyHitPolicy(ev, tbl, decisionName, env, matches)
}

func ruleMatches(lenient *feel.Evaluator, rule model.Rule, inputVals []feel.Value, env *feel.Environment) bool {
	for i, test := range rule.Inputs {
		if _, isAny := test.(feel.UTAny); isAny {
			continue
		}
		ok, err := lenient.EvalUnaryTest(test, inputVals[i], env)
		if err != nil || !ok {
			return false
		}
	}
	return true
}

func evalOutputRow(ev *feel.Evaluator, tbl *model.DecisionTable, rule model.Rule, env *feel.Environment) (Row, error) {
	row := make(Row, len(tbl.Outputs))
	allNull := true
	for i, oc := range tbl.Outputs {
		v, err := ev.Eval(rule.Outputs[i], env)
		if err != nil {
			return nil, err
		}
		if !v.IsNull() {
			allNull = false
		}
		row[oc.Name] = v
	}
	if allNull && len(tbl.Outputs) == 1 && tbl.Outputs[0].Default != nil {
		def, err := ev.Eval(tbl.Outputs[0].Default, env)
		if err != nil {
			return nil, err
		}
		row[tbl.Outputs[0].Name] = def
	}
	return row, nil
}

func defaultRow(ev *feel.Evaluator, tbl *model.DecisionTable, env *feel.Environment) (Row, error) {
	row := make(Row, len(tbl.Outputs))
	for _, oc := range tbl.Outputs {
		if oc.Default != nil {
			v, err := ev.Eval(oc.Default, env)
			if err != nil {
				return nil, err
			}
			row[oc.Name] = v
			continue
		}
		row[oc.Name] = feel.Null
	}
	return row, nil
}

func applyHitPolicy(ev *feel.Evaluator, tbl *model.DecisionTable, decisionName string, env *feel.Environment, matches []match) (Result, error) {
	switch tbl.Policy {
	case model.Unique:
		if len(matches) == 0 {
			row, err := defaultRow(ev, tbl, env)
			return Result{Rows: []Row{row}}, err
		}
		if len(matches) > 1 {
			return Result{}, errHitPolicyViolation(decisionName, "UNIQUE hit policy requires exactly one matching rule")
		}
		return Result{Rows: []Row{matches[0].row}}, nil

	case model.Any:
		if len(matches) == 0 {
			row, err := defaultRow(ev, tbl, env)
			return Result{Rows: []Row{row}}, err
		}
		first := matches[0].row
		for _, m := range matches[1:] {
			if !rowsEqual(first, m.row) {
				return Result{}, errHitPolicyViolation(decisionName, "ANY hit policy requires all matching rules to agree on every output")
			}
		}
		return Result{Rows: []Row{first}}, nil

	case model.First:
		if len(matches) == 0 {
			row, err := defaultRow(ev, tbl, env)
			return Result{Rows: []Row{row}}, err
		}
		return Result{Rows: []Row{matches[0].row}}, nil

	case model.Priority:
		if len(matches) == 0 {
			row, err := defaultRow(ev, tbl, env)
			return Result{Rows: []Row{row}}, err
		}
		return Result{Rows: []Row{rankByPriority(tbl, matches)}}, nil

	case model.RuleOrder:
		if len(matches) == 0 {
			return Result{Rows: nil}, nil
		}
		rows := make([]Row, len(matches))
		for i, m := range matches {
			rows[i] = m.row
		}
		return Result{Rows: rows}, nil

	case model.Collect:
		if tbl.Aggregator == model.NoAggregator {
			if len(matches) == 0 {
				return Result{Rows: nil}, nil
			}
			rows := make([]Row, len(matches))
			for i, m := range matches {
				rows[i] = m.row
			}
			return Result{Rows: rows}, nil
		}
		return aggregateCollect(tbl, matches)

	default:
		return Result{}, errTableSchema(decisionName, "unknown hit policy")
	}
}

func rowsEqual(a, b Row) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !feel.Equal(va, vb) {
			return false
		}
	}
	return true
}

// rankByPriority ranks matches by the position of their output value
// in the first output clause's allowed-value list (earliest wins);
// unlisted values rank last, ties break by rule order.
func rankByPriority(tbl *model.DecisionTable, matches []match) Row {
	if len(tbl.Outputs) == 0 {
		return matches[0].row
	}
	oc := tbl.Outputs[0]
	bestIdx := -1
	bestRank := len(oc.AllowedValues) + 1
	for i, m := range matches {
		v, ok := m.row[oc.Name]
		rank := len(oc.AllowedValues) // unknown value: ranks just past the list
		if ok {
			for ai, av := range oc.AllowedValues {
				if feel.Equal(v, av) {
					rank = ai
					break
				}
			}
		}
		if rank < bestRank {
			bestRank = rank
			bestIdx = i
		}
	}
	if bestIdx == -1 {
		bestIdx = 0
	}
	return matches[bestIdx].row
}

func aggregateCollect(tbl *model.DecisionTable, matches []match) (Result, error) {
	row := make(Row, len(tbl.Outputs))
	for _, oc := range tbl.Outputs {
		var values []feel.Value
		for _, m := range matches {
			if v, ok := m.row[oc.Name]; ok {
				values = append(values, v)
			}
		}
		row[oc.Name] = aggregate(tbl.Aggregator, values)
	}
	return Result{Rows: []Row{row}}, nil
}

func aggregate(agg model.Aggregator, values []feel.Value) feel.Value {
	switch agg {
	case model.AggCount:
		n := 0
		for _, v := range values {
			if !v.IsNull() {
				n++
			}
		}
		return feel.NumberFromInt64(int64(n))
	case model.AggSum:
		sum := apd.New(0, 0)
		any := false
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			n, ok := v.AsNumber()
			if !ok {
				continue
			}
			any = true
			feel.DecimalContext.Add(sum, sum, n)
		}
		if !any {
			return feel.NumberFromInt64(0)
		}
		return feel.Number(sum)
	case model.AggMin, model.AggMax:
		var best feel.Value
		have := false
		for _, v := range values {
			if v.IsNull() {
				continue
			}
			if !have {
				best = v
				have = true
				continue
			}
			cmp, ok := feel.Order(v, best)
			if !ok {
				continue
			}
			if (agg == model.AggMin && cmp < 0) || (agg == model.AggMax && cmp > 0) {
				best = v
			}
		}
		if !have {
			return feel.Null
		}
		return best
	default:
		return feel.Null
	}
}
