// Package scheduler computes the evaluation plan for one or more
// target decisions: their transitive required-decision closure,
// stably topologically ordered so every dependency precedes its
// dependents and siblings keep their declaration order.
package scheduler

import (
	"fmt"

	"github.com/ritamzico/dmnfeel/internal/model"
)

// SchedulerError mirrors the {Kind, Message} idiom used throughout the
// codebase, reserved for target-name lookup failures — cycles are
// rejected at build time and are an invariant here, not a recoverable
// condition.
type SchedulerError struct {
	Kind    string
	Message string
}

func (e SchedulerError) Error() string {
	return fmt.Sprintf("scheduler error (%s): %s", e.Kind, e.Message)
}

func errUnknownDecision(name string) error {
	return SchedulerError{Kind: "UnknownDecision", Message: fmt.Sprintf("no decision named %q", name)}
}

// Closure computes the union of the transitive required-decision sets
// of targets, via DFS over each decision's RequiredDecisions, the same
// visited-set/memo shape used for probabilistic reachability.
func Closure(def *model.Definition, targets []string) (map[string]bool, error) {
	closure := make(map[string]bool)
	visiting := make(map[string]bool)

	var visit func(name string) error
	visit = func(name string) error {
		if closure[name] {
			return nil
		}
		if visiting[name] {
			// Cycles are rejected at build time; this only guards
			// against a caller bypassing Builder.Build.
			return fmt.Errorf("scheduler: unexpected cycle at %q", name)
		}
		dec, ok := def.Decision(name)
		if !ok {
			return errUnknownDecision(name)
		}
		visiting[name] = true
		for _, req := range dec.RequiredDecisions {
			if err := visit(req); err != nil {
				return err
			}
		}
		delete(visiting, name)
		closure[name] = true
		return nil
	}

	for _, t := range targets {
		if err := visit(t); err != nil {
			return nil, err
		}
	}
	return closure, nil
}

// Plan returns the decisions that must be evaluated to produce every
// target, in a stable topological order: a subsequence of the
// definition's build-time order restricted to the transitive closure
// of targets. A subsequence of a topological order is itself a valid
// topological order for the induced subgraph, so siblings keep their
// declaration-order relationship without a second sort pass.
func Plan(def *model.Definition, targets []string) ([]string, error) {
	closure, err := Closure(def, targets)
	if err != nil {
		return nil, err
	}
	plan := make([]string, 0, len(closure))
	for _, name := range def.Order() {
		if closure[name] {
			plan = append(plan, name)
		}
	}
	return plan, nil
}
