package model

import "github.com/ritamzico/dmnfeel/internal/feel"

// DecisionKind distinguishes the two decision logic shapes.
type DecisionKind int

const (
	ExpressionDecision DecisionKind = iota
	TableDecision
)

// Decision is a named node in the requirements graph producing one
// output variable, backed either by a single FEEL expression or by a
// decision table.
type Decision struct {
	Name           string
	NormalizedName string
	OutputVariable string
	OutputType     *feel.Type
	Kind           DecisionKind

	// RequiredDecisions/RequiredInputs name the information requirements
	// declared at build time; the scheduler walks these to compute the
	// transitive closure.
	RequiredDecisions []string
	RequiredInputs    []string

	Expression feel.Expr      // set when Kind == ExpressionDecision
	Table      *DecisionTable // set when Kind == TableDecision
}
