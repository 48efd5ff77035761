package feel

import "github.com/cockroachdb/apd/v3"

// Decimal arithmetic helpers. All operations run under DecimalContext
// (34 significant digits, round-half-to-even).

func decAdd(a, b *apd.Decimal) (*apd.Decimal, error) {
	res := new(apd.Decimal)
	_, err := DecimalContext.Add(res, a, b)
	return res, err
}

func decSub(a, b *apd.Decimal) (*apd.Decimal, error) {
	res := new(apd.Decimal)
	_, err := DecimalContext.Sub(res, a, b)
	return res, err
}

func decMul(a, b *apd.Decimal) (*apd.Decimal, error) {
	res := new(apd.Decimal)
	_, err := DecimalContext.Mul(res, a, b)
	return res, err
}

// decDiv returns (result, isDivByZero, err). Per DMN semantics, `/` by
// zero yields Null rather than an error.
func decDiv(a, b *apd.Decimal) (*apd.Decimal, bool, error) {
	if b.IsZero() {
		return nil, true, nil
	}
	res := new(apd.Decimal)
	_, err := DecimalContext.Quo(res, a, b)
	return res, false, err
}

// decMod returns a % b (FEEL modulo, result takes the sign of the
// divisor). Modulo by zero is the one arithmetic case that raises
// DivisionByZero rather than yielding Null.
func decMod(a, b *apd.Decimal) (*apd.Decimal, error) {
	if b.IsZero() {
		return nil, errDivisionByZero("modulo")
	}
	res := new(apd.Decimal)
	_, err := DecimalContext.Rem(res, a, b)
	if err != nil {
		return nil, err
	}
	if !res.IsZero() && res.Negative != b.Negative {
		res, err = decAdd(res, b)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func decNeg(a *apd.Decimal) *apd.Decimal {
	res := new(apd.Decimal)
	res.Neg(a)
	return res
}

func decPow(a, b *apd.Decimal) (*apd.Decimal, error) {
	res := new(apd.Decimal)
	_, err := DecimalContext.Pow(res, a, b)
	return res, err
}

func decCmp(a, b *apd.Decimal) int {
	return a.Cmp(b)
}
