package context

import "github.com/ritamzico/dmnfeel/internal/feel"

// Step is one entry of an execution Trace: the decision that was
// evaluated, the outputs it produced (nil on failure), any error, and
// warnings accumulated along the way.
type Step struct {
	Decision string
	Outputs  map[string]feel.Value
	Err      error
	Warnings []string
}

// Trace is the append-only record a pass builds as it evaluates
// decisions. A Step is appended before the evaluation call returns,
// whether it succeeded or failed.
type Trace struct {
	Steps []Step
}

// NewTrace returns an empty Trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Append records one Step.
func (t *Trace) Append(step Step) {
	t.Steps = append(t.Steps, step)
}

// Warn attaches a warning to the most recently appended step. It is a
// no-op if the trace is still empty, which should not happen in
// practice since warnings are only raised while evaluating a decision.
func (t *Trace) Warn(message string) {
	if len(t.Steps) == 0 {
		return
	}
	last := &t.Steps[len(t.Steps)-1]
	last.Warnings = append(last.Warnings, message)
}
