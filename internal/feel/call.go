package feel

// evalCall implements function invocation: built-in functions are
// resolved by name directly; user-defined functions close over the
// environment they were defined in, per FunctionDefExpr's evaluation.
func (ev *Evaluator) evalCall(e CallExpr, env *Environment) (Value, error) {
	positional := make([]Value, len(e.PositionalArgs))
	for i, a := range e.PositionalArgs {
		v, err := ev.Eval(a, env)
		if err != nil {
			return Null, err
		}
		positional[i] = v
	}
	var named map[string]Value
	if len(e.NamedArgs) > 0 {
		named = make(map[string]Value, len(e.NamedArgs))
		for _, name := range e.NamedOrder {
			v, err := ev.Eval(e.NamedArgs[name], env)
			if err != nil {
				return Null, err
			}
			named[name] = v
		}
	}

	if ref, ok := e.Callee.(NameRefExpr); ok {
		if v, ok := ResolveName(env, ref.Raw); ok {
			if fn, ok := v.AsFunction(); ok {
				return ev.applyFunction(fn, positional, named)
			}
			return Null, errType("%q is not callable", ref.Raw)
		}
		if _, ok := builtinRegistry[ref.Raw]; ok {
			return callBuiltin(ref.Raw, positional, named)
		}
		return Null, errUnknownName(ref.Raw)
	}

	callee, err := ev.Eval(e.Callee, env)
	if err != nil {
		return Null, err
	}
	fn, ok := callee.AsFunction()
	if !ok {
		return Null, errType("call target is not a function, got %v", callee.Kind())
	}
	return ev.applyFunction(fn, positional, named)
}

func (ev *Evaluator) applyFunction(fn *Function, positional []Value, named map[string]Value) (Value, error) {
	if fn.Builtin != "" {
		return callBuiltin(fn.Builtin, positional, named)
	}
	childEnv := fn.Closure.Child()
	if named != nil {
		for _, p := range fn.Params {
			v, ok := named[p]
			if !ok {
				v = Null
			}
			childEnv.Bind(p, v)
		}
	} else {
		for i, p := range fn.Params {
			v := Null
			if i < len(positional) {
				v = positional[i]
			}
			childEnv.Bind(p, v)
		}
	}
	return ev.Eval(fn.Body, childEnv)
}
