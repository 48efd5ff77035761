package feel

import "testing"

func TestValueFromTypedStringConvertsPerDeclaredType(t *testing.T) {
	cases := []struct {
		raw  string
		typ  *Type
		want Kind
	}{
		{"42", TypeNumber, KindNumber},
		{"true", TypeBoolean, KindBoolean},
		{"hello", TypeString, KindString},
		{"2020-01-01", TypeDate, KindDate},
	}
	for _, c := range cases {
		v, handled, err := ValueFromTypedString(c.raw, c.typ)
		if !handled {
			t.Errorf("%q/%v: expected handled=true", c.raw, c.typ)
			continue
		}
		if err != nil {
			t.Errorf("%q/%v: %v", c.raw, c.typ, err)
			continue
		}
		if v.Kind() != c.want {
			t.Errorf("%q/%v: got kind %v, want %v", c.raw, c.typ, v.Kind(), c.want)
		}
	}
}

func TestValueFromTypedStringUnhandledForAny(t *testing.T) {
	if _, handled, _ := ValueFromTypedString("42", TypeAny); handled {
		t.Error("expected Any to be unhandled, so callers fall back to generic conversion")
	}
	if _, handled, _ := ValueFromTypedString("42", nil); handled {
		t.Error("expected a nil type to be unhandled")
	}
}

func TestValueFromTypedStringRejectsBadBoolean(t *testing.T) {
	if _, handled, err := ValueFromTypedString("maybe", TypeBoolean); !handled || err == nil {
		t.Error("expected a handled conversion error for an unrecognized boolean literal")
	}
}
