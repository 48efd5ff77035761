package feel

import "strings"

// ValueFromTypedString converts raw text into a Value using t's
// declared type rather than guessing from JSON syntax: boolean, number,
// and temporal types parse raw in their own FEEL lexical form, and
// string types take raw verbatim (no JSON quoting required). handled
// reports whether t named a type this function knows how to convert;
// callers should fall back to their own generic conversion when it is
// false (t is nil, Any, or a structured type with no meaningful string
// form).
func ValueFromTypedString(raw string, t *Type) (v Value, handled bool, err error) {
	if t == nil {
		return Null, false, nil
	}
	switch t.Name {
	case "boolean":
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			return Bool(true), true, nil
		case "false":
			return Bool(false), true, nil
		default:
			return Null, true, errType("not a boolean: %q", raw)
		}
	case "number":
		v, err := NumberFromString(strings.TrimSpace(raw))
		return v, true, err
	case "string":
		return String(raw), true, nil
	case "date":
		t2, err := ParseDate(raw)
		if err != nil {
			return Null, true, err
		}
		return DateVal(t2), true, nil
	case "time":
		t2, err := ParseTime(raw)
		if err != nil {
			return Null, true, err
		}
		return TimeVal(t2), true, nil
	case "dateTime":
		t2, err := ParseDateTime(raw)
		if err != nil {
			return Null, true, err
		}
		return DateTimeVal(t2), true, nil
	case "dayTimeDuration":
		d, err := ParseDayTimeDuration(raw)
		if err != nil {
			return Null, true, err
		}
		return DayTimeDurationVal(d), true, nil
	case "yearMonthDuration":
		d, err := ParseYearMonthDuration(raw)
		if err != nil {
			return Null, true, err
		}
		return YearMonthDurationVal(d), true, nil
	default:
		return Null, false, nil
	}
}
