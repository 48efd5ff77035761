package feel

// EvalUnaryTest decides whether input satisfies test: the algorithm
// decision-table rule matching runs per input entry. A lenient
// Evaluator (see NewLenientEvaluator) should be used here — an
// unresolved name inside a unary test's endpoint expression resolves
// to Null rather than raising UnknownName.
func (ev *Evaluator) EvalUnaryTest(test UnaryTest, input Value, env *Environment) (bool, error) {
	switch t := test.(type) {
	case UTAny:
		return true, nil

	case UTNull:
		return input.IsNull(), nil

	case UTNot:
		for _, sub := range t.Tests {
			ok, err := ev.EvalUnaryTest(sub, input, env)
			if err != nil {
				return false, err
			}
			if ok {
				return false, nil
			}
		}
		return true, nil

	case UTDisjunction:
		for _, sub := range t.Tests {
			ok, err := ev.EvalUnaryTest(sub, input, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case UTCompare:
		rhs, err := ev.Eval(t.X, env)
		if err != nil {
			return false, err
		}
		return ev.compareUnary(t.Op, input, rhs)

	case UTRange:
		return ev.evalUTRange(t, input, env)

	default:
		return false, errType("unsupported unary test %T", test)
	}
}

func (ev *Evaluator) compareUnary(op string, input, rhs Value) (bool, error) {
	switch op {
	case "=", "==":
		if input.IsNull() || rhs.IsNull() {
			return input.IsNull() && rhs.IsNull(), nil
		}
		return Equal(input, rhs), nil
	case "!=":
		if input.IsNull() || rhs.IsNull() {
			return !(input.IsNull() && rhs.IsNull()), nil
		}
		return !Equal(input, rhs), nil
	case "<", ">", "<=", ">=":
		v, err := evalOrderCompare(op, input, rhs)
		if err != nil {
			return false, err
		}
		return v.IsTruthy(), nil // Null (incomparable) means no match, not an error
	default:
		return false, errType("unknown comparison operator in unary test: %q", op)
	}
}

func (ev *Evaluator) evalUTRange(t UTRange, input Value, env *Environment) (bool, error) {
	if input.IsNull() {
		return false, nil
	}
	lowOK, highOK := true, true
	if !t.LowUnbounded {
		loV, err := ev.Eval(t.Lower, env)
		if err != nil {
			return false, err
		}
		cmp, ok := Order(input, loV)
		if !ok {
			return false, nil
		}
		if t.LowInclusive {
			lowOK = cmp >= 0
		} else {
			lowOK = cmp > 0
		}
	}
	if !highOK || !lowOK {
		return false, nil
	}
	if !t.HighUnbounded {
		hiV, err := ev.Eval(t.Upper, env)
		if err != nil {
			return false, err
		}
		cmp, ok := Order(input, hiV)
		if !ok {
			return false, nil
		}
		if t.HighInclusive {
			highOK = cmp <= 0
		} else {
			highOK = cmp < 0
		}
	}
	return lowOK && highOK, nil
}
