package table

import "fmt"

// TableError follows the {Kind, Message} idiom shared with
// feel.FeelError and model.ModelError.
type TableError struct {
	Kind     string
	Message  string
	Decision string
}

func (e TableError) Error() string {
	if e.Decision != "" {
		return fmt.Sprintf("table error (%s) in %q: %s", e.Kind, e.Decision, e.Message)
	}
	return fmt.Sprintf("table error (%s): %s", e.Kind, e.Message)
}

func errHitPolicyViolation(decision, message string) error {
	return TableError{Kind: "HitPolicyViolation", Message: message, Decision: decision}
}

func errTableSchema(decision, message string) error {
	return TableError{Kind: "TableSchemaError", Message: message, Decision: decision}
}
