package model

import "fmt"

// ModelError follows the same {Kind, Message} idiom used elsewhere in
// this module: builder/load-time structural failures, not evaluation
// failures (those are feel.FeelError/table.TableError).
type ModelError struct {
	Kind    string
	Message string
}

func (e ModelError) Error() string {
	return fmt.Sprintf("model error (%s): %s", e.Kind, e.Message)
}

func errDuplicateName(kind, name string) error {
	return ModelError{Kind: "ParseError", Message: fmt.Sprintf("duplicate %s name %q", kind, name)}
}

func errUnresolvedRequirement(decision, required string) error {
	return ModelError{Kind: "ParseError", Message: fmt.Sprintf("decision %q requires unknown name %q", decision, required)}
}

func errCycle(path []string) error {
	return ModelError{Kind: "ParseError", Message: fmt.Sprintf("requirement cycle detected: %v", path)}
}

func errArityMismatch(decision string, ruleID string, wantInputs, gotInputs, wantOutputs, gotOutputs int) error {
	return ModelError{Kind: "ParseError", Message: fmt.Sprintf(
		"decision %q rule %q: got %d input entries (want %d) and %d output entries (want %d)",
		decision, ruleID, gotInputs, wantInputs, gotOutputs, wantOutputs)}
}

func errHitPolicy(decision, reason string) error {
	return ModelError{Kind: "ParseError", Message: fmt.Sprintf("decision %q: invalid hit policy/aggregator: %s", decision, reason)}
}

func errNoRoots() error {
	return ModelError{Kind: "ParseError", Message: "definition has no root decisions"}
}

func errParse(format string, args ...any) error {
	return ModelError{Kind: "ParseError", Message: fmt.Sprintf(format, args...)}
}
