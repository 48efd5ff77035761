package feel

// Equal implements FEEL equality: Null equals only Null; numbers by
// mathematical value; strings code-point-wise; lists element-wise;
// contexts key-wise; incompatible kinds are unequal (never Null here —
// equality is always decidable, unlike ordering).
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return decCmp(a.n, b.n) == 0
	case KindString:
		return a.s == b.s
	case KindDate, KindTime, KindDateTime:
		return temporalEqual(a.temporal, b.temporal)
	case KindDayTimeDuration:
		return a.duration.TotalSeconds() == b.duration.TotalSeconds()
	case KindYearMonthDuration:
		return a.duration.TotalMonths() == b.duration.TotalMonths()
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindContext:
		if a.ctx.Len() != b.ctx.Len() {
			return false
		}
		for _, k := range a.ctx.Keys() {
			av, _ := a.ctx.Get(k)
			bv, ok := b.ctx.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindRange:
		return Equal(a.rng.Low, b.rng.Low) && Equal(a.rng.High, b.rng.High) &&
			a.rng.LowInclusive == b.rng.LowInclusive && a.rng.HighInclusive == b.rng.HighInclusive &&
			a.rng.LowUnbounded == b.rng.LowUnbounded && a.rng.HighUnbounded == b.rng.HighUnbounded
	default:
		return false
	}
}

func temporalEqual(a, b *Temporal) bool {
	return a.ToGoTime().Equal(b.ToGoTime()) && a.HasOffset == b.HasOffset
}

// Order compares a and b for <, returning (cmp, ok); ok is false when
// ordering isn't defined for this pair, in which case comparison
// yields Null. cmp follows the usual -1/0/1 convention.
func Order(a, b Value) (cmp int, ok bool) {
	if a.Kind() != b.Kind() {
		return 0, false
	}
	switch a.Kind() {
	case KindNumber:
		return decCmp(a.n, b.n), true
	case KindString:
		if a.s < b.s {
			return -1, true
		}
		if a.s > b.s {
			return 1, true
		}
		return 0, true
	case KindDate, KindTime, KindDateTime:
		at, bt := a.temporal.ToGoTime(), b.temporal.ToGoTime()
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		default:
			return 0, true
		}
	case KindDayTimeDuration:
		as, bs := a.duration.TotalSeconds(), b.duration.TotalSeconds()
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	case KindYearMonthDuration:
		am, bm := a.duration.TotalMonths(), b.duration.TotalMonths()
		switch {
		case am < bm:
			return -1, true
		case am > bm:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// threeValuedAnd/Or implement FEEL's three-valued truth table: true
// AND Null -> Null, false AND Null -> false, and the symmetric rule
// for OR.
func threeValuedAnd(a, b Value) Value {
	ab, aIsBool := a.AsBool()
	bb, bIsBool := b.AsBool()
	switch {
	case aIsBool && !ab:
		return Bool(false)
	case bIsBool && !bb:
		return Bool(false)
	case aIsBool && bIsBool:
		return Bool(ab && bb)
	default:
		return Null
	}
}

func threeValuedOr(a, b Value) Value {
	ab, aIsBool := a.AsBool()
	bb, bIsBool := b.AsBool()
	switch {
	case aIsBool && ab:
		return Bool(true)
	case bIsBool && bb:
		return Bool(true)
	case aIsBool && bIsBool:
		return Bool(ab || bb)
	default:
		return Null
	}
}
