// Package context implements the execution context and trace an
// evaluation pass threads through the scheduler: a scoped name->Value
// store plus an append-only record of each decision step.
package context

import "github.com/ritamzico/dmnfeel/internal/feel"

// Context exposes get/set over the bound names of one evaluation pass.
// set is one-shot per decision output: a decision's output variable is
// bound exactly once, the first time its decision is evaluated.
// push_scope/pop_scope support the evaluator's internal frames without
// disturbing the decision-level bindings underneath them.
type Context struct {
	scopes []*feel.Environment
}

// New creates a Context with a single root scope.
func New() *Context {
	return &Context{scopes: []*feel.Environment{feel.NewEnvironment()}}
}

func (c *Context) top() *feel.Environment {
	return c.scopes[len(c.scopes)-1]
}

// Get returns the value bound to name in the current scope chain, or
// ok=false if it is unbound.
func (c *Context) Get(name string) (feel.Value, bool) {
	return feel.ResolveName(c.top(), name)
}

// Set binds name in the current top scope. Callers enforce the
// one-shot-per-decision-output discipline; Set itself just binds.
func (c *Context) Set(name string, v feel.Value) {
	c.top().Bind(name, v)
}

// PushScope opens a new evaluator-internal frame rooted at the current
// top scope.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, c.top().Child())
}

// PopScope discards the innermost frame. Popping the root scope is a
// programming error and panics, mirroring an unbalanced push/pop in
// the caller.
func (c *Context) PopScope() {
	if len(c.scopes) == 1 {
		panic("context: PopScope called with no open scope")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// Env returns the current top scope as a *feel.Environment, for
// handing to the FEEL evaluator directly.
func (c *Context) Env() *feel.Environment {
	return c.top()
}
