package feel

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Temporal represents a Date, Time, or DateTime value. OffsetSeconds is
// the timezone offset in seconds east of UTC; HasOffset is false for
// "local" (offset-less) values. A local value is never equal to an
// offset-bearing value of the same kind, but ordering (<, >, ranges,
// sort) treats a local value as UTC and so does compare the two.
type Temporal struct {
	Year, Month, Day             int
	Hour, Minute, Second         int
	Nanosecond                   int
	HasDate, HasTime             bool
	HasOffset                    bool
	OffsetSeconds                int
}

func (t *Temporal) String() string {
	var b strings.Builder
	if t.HasDate {
		fmt.Fprintf(&b, "%04d-%02d-%02d", t.Year, t.Month, t.Day)
	}
	if t.HasTime {
		if t.HasDate {
			b.WriteString("T")
		}
		fmt.Fprintf(&b, "%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
		if t.Nanosecond != 0 {
			fmt.Fprintf(&b, ".%09d", t.Nanosecond)
		}
		if t.HasOffset {
			b.WriteString(formatOffset(t.OffsetSeconds))
		}
	}
	return b.String()
}

func formatOffset(seconds int) string {
	if seconds == 0 {
		return "Z"
	}
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// ToGoTime converts to a time.Time in UTC for arithmetic/comparison
// purposes. Offset-less values are treated as UTC.
func (t *Temporal) ToGoTime() time.Time {
	loc := time.UTC
	secs := 0
	if t.HasOffset {
		secs = t.OffsetSeconds
	}
	tt := time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, t.Nanosecond, loc)
	return tt.Add(-time.Duration(secs) * time.Second)
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (*Temporal, error) {
	var y, m, d int
	if _, err := fmt.Sscanf(s, "%04d-%02d-%02d", &y, &m, &d); err != nil {
		return nil, fmt.Errorf("invalid date literal %q", s)
	}
	return &Temporal{Year: y, Month: m, Day: d, HasDate: true}, nil
}

// ParseTime parses "HH:MM:SS[.fff][offset]".
func ParseTime(s string) (*Temporal, error) {
	body, offset, hasOffset := splitOffset(s)
	parts := strings.SplitN(body, ".", 2)
	var h, mi, se int
	if _, err := fmt.Sscanf(parts[0], "%02d:%02d:%02d", &h, &mi, &se); err != nil {
		return nil, fmt.Errorf("invalid time literal %q", s)
	}
	ns := 0
	if len(parts) == 2 {
		frac := parts[1]
		for len(frac) < 9 {
			frac += "0"
		}
		n, err := strconv.Atoi(frac[:9])
		if err != nil {
			return nil, fmt.Errorf("invalid time literal %q", s)
		}
		ns = n
	}
	t := &Temporal{Hour: h, Minute: mi, Second: se, Nanosecond: ns, HasTime: true}
	if hasOffset {
		secs, err := parseOffset(offset)
		if err != nil {
			return nil, err
		}
		t.HasOffset = true
		t.OffsetSeconds = secs
	}
	return t, nil
}

// ParseDateTime parses "YYYY-MM-DDTHH:MM:SS[.fff][offset]".
func ParseDateTime(s string) (*Temporal, error) {
	idx := strings.IndexByte(s, 'T')
	if idx < 0 {
		return nil, fmt.Errorf("invalid date-time literal %q", s)
	}
	d, err := ParseDate(s[:idx])
	if err != nil {
		return nil, err
	}
	tm, err := ParseTime(s[idx+1:])
	if err != nil {
		return nil, err
	}
	d.HasTime = true
	d.Hour, d.Minute, d.Second, d.Nanosecond = tm.Hour, tm.Minute, tm.Second, tm.Nanosecond
	d.HasOffset, d.OffsetSeconds = tm.HasOffset, tm.OffsetSeconds
	return d, nil
}

func splitOffset(s string) (body, offset string, hasOffset bool) {
	if strings.HasSuffix(s, "Z") {
		return s[:len(s)-1], "Z", true
	}
	// Look for a trailing +HH:MM or -HH:MM, but not the leading sign
	// of... there is none here, times have no leading sign.
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '+' || s[i] == '-' {
			return s[:i], s[i:], true
		}
	}
	return s, "", false
}

func parseOffset(s string) (int, error) {
	if s == "Z" {
		return 0, nil
	}
	if len(s) < 6 {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	sign := 1
	if s[0] == '-' {
		sign = -1
	}
	var h, m int
	if _, err := fmt.Sscanf(s[1:], "%02d:%02d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return sign * (h*3600 + m*60), nil
}

// Component returns the named temporal accessor (year, month, day,
// hour, minute, second, offset, weekday).
func (t *Temporal) Component(name string) (Value, bool) {
	switch strings.ToLower(name) {
	case "year":
		if !t.HasDate {
			return Null, false
		}
		return NumberFromInt64(int64(t.Year)), true
	case "month":
		if !t.HasDate {
			return Null, false
		}
		return NumberFromInt64(int64(t.Month)), true
	case "day":
		if !t.HasDate {
			return Null, false
		}
		return NumberFromInt64(int64(t.Day)), true
	case "hour":
		if !t.HasTime {
			return Null, false
		}
		return NumberFromInt64(int64(t.Hour)), true
	case "minute":
		if !t.HasTime {
			return Null, false
		}
		return NumberFromInt64(int64(t.Minute)), true
	case "second":
		if !t.HasTime {
			return Null, false
		}
		return NumberFromInt64(int64(t.Second)), true
	case "weekday":
		if !t.HasDate {
			return Null, false
		}
		wd := int(t.ToGoTime().Weekday())
		if wd == 0 {
			wd = 7 // FEEL: Monday=1..Sunday=7
		}
		return NumberFromInt64(int64(wd)), true
	case "offset":
		if !t.HasOffset {
			return Null, false
		}
		return NumberFromInt64(int64(t.OffsetSeconds)), true
	case "timezone":
		if !t.HasOffset {
			return Null, false
		}
		return String(formatOffset(t.OffsetSeconds)), true
	default:
		return Null, false
	}
}

// Duration is a FEEL dayTimeDuration or yearMonthDuration value. Exactly
// one of (Months) or (Days/Seconds) is meaningful, matching Kind.
type Duration struct {
	Months  int // yearMonthDuration
	Days    int // dayTimeDuration
	Seconds int // dayTimeDuration, within-day remainder
	Negative bool
}

func (d *Duration) String() string {
	sign := ""
	if d.Negative {
		sign = "-"
	}
	if d.Months != 0 || (d.Days == 0 && d.Seconds == 0) {
		years := d.Months / 12
		months := d.Months % 12
		return fmt.Sprintf("%sP%dY%dM", sign, years, months)
	}
	h := d.Seconds / 3600
	m := (d.Seconds % 3600) / 60
	s := d.Seconds % 60
	return fmt.Sprintf("%sP%dDT%dH%dM%dS", sign, d.Days, h, m, s)
}

// ParseYearMonthDuration parses "P[n]Y[n]M".
func ParseYearMonthDuration(s string) (*Duration, error) {
	neg, body, err := stripDurationSign(s)
	if err != nil {
		return nil, err
	}
	var years, months int
	rest := body
	if i := strings.IndexByte(rest, 'Y'); i >= 0 {
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		years = n
		rest = rest[i+1:]
	}
	if i := strings.IndexByte(rest, 'M'); i >= 0 {
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		months = n
	}
	return &Duration{Months: years*12 + months, Negative: neg}, nil
}

// ParseDayTimeDuration parses "P[n]DT[n]H[n]M[n]S".
func ParseDayTimeDuration(s string) (*Duration, error) {
	neg, body, err := stripDurationSign(s)
	if err != nil {
		return nil, err
	}
	datePart, timePart := body, ""
	if i := strings.IndexByte(body, 'T'); i >= 0 {
		datePart, timePart = body[:i], body[i+1:]
	}
	var days int
	if datePart != "" {
		if i := strings.IndexByte(datePart, 'D'); i >= 0 {
			n, err := strconv.Atoi(datePart[:i])
			if err != nil {
				return nil, fmt.Errorf("invalid duration %q", s)
			}
			days = n
		}
	}
	seconds := 0
	rest := timePart
	if i := strings.IndexByte(rest, 'H'); i >= 0 {
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		seconds += n * 3600
		rest = rest[i+1:]
	}
	if i := strings.IndexByte(rest, 'M'); i >= 0 {
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		seconds += n * 60
		rest = rest[i+1:]
	}
	if i := strings.IndexByte(rest, 'S'); i >= 0 {
		n, err := strconv.Atoi(rest[:i])
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		seconds += n
	}
	return &Duration{Days: days, Seconds: seconds, Negative: neg}, nil
}

func stripDurationSign(s string) (neg bool, body string, err error) {
	if strings.HasPrefix(s, "-P") {
		return true, s[2:], nil
	}
	if strings.HasPrefix(s, "P") {
		return false, s[1:], nil
	}
	return false, "", fmt.Errorf("invalid duration literal %q", s)
}

// TotalSeconds returns the dayTimeDuration's signed total in seconds.
func (d *Duration) TotalSeconds() int64 {
	total := int64(d.Days)*86400 + int64(d.Seconds)
	if d.Negative {
		total = -total
	}
	return total
}

// TotalMonths returns the yearMonthDuration's signed total in months.
func (d *Duration) TotalMonths() int64 {
	total := int64(d.Months)
	if d.Negative {
		total = -total
	}
	return total
}
