package model

import "github.com/ritamzico/dmnfeel/internal/feel"

// HitPolicy enumerates the rule-selection/aggregation discipline of a
// decision table.
type HitPolicy int

const (
	Unique HitPolicy = iota
	First
	Priority
	Any
	RuleOrder
	Collect
)

func (p HitPolicy) String() string {
	switch p {
	case Unique:
		return "UNIQUE"
	case First:
		return "FIRST"
	case Priority:
		return "PRIORITY"
	case Any:
		return "ANY"
	case RuleOrder:
		return "RULE ORDER"
	case Collect:
		return "COLLECT"
	default:
		return "UNKNOWN"
	}
}

// Aggregator is only meaningful when Policy == Collect.
type Aggregator int

const (
	NoAggregator Aggregator = iota
	AggSum
	AggMin
	AggMax
	AggCount
)

func (a Aggregator) String() string {
	switch a {
	case AggSum:
		return "SUM"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	case AggCount:
		return "COUNT"
	default:
		return ""
	}
}

// InputClause is one column of a decision table's input side: the
// expression that produces the value to test, its declared type, and
// its allowed values. Priority ranking uses the output clause's allowed
// values, not these, and Builder leaves AllowedValues empty.
type InputClause struct {
	Expression    feel.Expr
	Type          *feel.Type
	AllowedValues []feel.Value
}

// OutputClause is one column of a decision table's output side.
type OutputClause struct {
	Name          string
	Type          *feel.Type
	AllowedValues []feel.Value
	Default       feel.Expr // may be nil
}

// Rule is one row: one unary test per input clause (UTAny for a
// wildcard '-' or empty cell) and one expression per output clause.
type Rule struct {
	ID      string
	Inputs  []feel.UnaryTest
	Outputs []feel.Expr
}

// DecisionTable holds ordered input/output clauses, ordered rules, and
// the hit policy governing their combination.
type DecisionTable struct {
	Inputs     []InputClause
	Outputs    []OutputClause
	Rules      []Rule
	Policy     HitPolicy
	Aggregator Aggregator
}
