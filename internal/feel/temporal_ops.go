package feel

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// evalTemporalLiteral sniffs an @"..." literal's concrete subtype from
// its lexical form (date/time/dateTime/duration literals all share the
// @"..." syntax; nothing upstream of evaluation time commits to one)
// and parses it accordingly. Models that declare a DMN version older
// than 1.4 get a non-fatal VersionMismatch warning recorded on ev,
// since @"..." temporal literals predate that version.
func (ev *Evaluator) evalTemporalLiteral(raw string) (Value, error) {
	v, err := parseTemporalLiteral(raw)
	if err != nil {
		return Null, err
	}
	if versionPredates1_4(ev.Version) {
		ev.Warnings = append(ev.Warnings, fmt.Sprintf(
			"VersionMismatch: @%q evaluated under DMN %s, which predates the 1.4 temporal-literal syntax", raw, ev.Version))
	}
	return v, nil
}

func parseTemporalLiteral(raw string) (Value, error) {
	body := raw
	if strings.HasPrefix(body, "-") {
		body = body[1:]
	}
	if strings.HasPrefix(body, "P") {
		if strings.ContainsAny(body, "DT") {
			d, err := ParseDayTimeDuration(raw)
			if err != nil {
				return Null, errSyntax("%v", err)
			}
			return DayTimeDurationVal(d), nil
		}
		d, err := ParseYearMonthDuration(raw)
		if err != nil {
			return Null, errSyntax("%v", err)
		}
		return YearMonthDurationVal(d), nil
	}
	if strings.IndexByte(raw, 'T') >= 0 {
		t, err := ParseDateTime(raw)
		if err != nil {
			return Null, errSyntax("%v", err)
		}
		return DateTimeVal(t), nil
	}
	if strings.ContainsRune(raw, ':') {
		t, err := ParseTime(raw)
		if err != nil {
			return Null, errSyntax("%v", err)
		}
		return TimeVal(t), nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		return Null, errSyntax("%v", err)
	}
	return DateVal(t), nil
}

// versionPredates1_4 reports whether v, a "major.minor" DMN version
// string, is older than 1.4. An empty or unparsable version (no
// declared version, or a non-numeric one) is treated as current and
// never warns.
func versionPredates1_4(v string) bool {
	if v == "" {
		return false
	}
	major, minor, ok := parseDMNVersion(v)
	if !ok {
		return false
	}
	return major < 1 || (major == 1 && minor < 4)
}

func parseDMNVersion(v string) (major, minor int, ok bool) {
	parts := strings.SplitN(v, ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	if len(parts) < 2 {
		return major, 0, true
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// addDurations implements duration + duration: the two operands must
// be the same duration subtype (mixing dayTime and yearMonth is left
// undefined, so it surfaces as a type error rather than a silent
// Null).
func addDurations(a, b Value) (Value, error) {
	if a.Kind() != b.Kind() {
		return Null, errType("cannot add %v and %v durations", a.Kind(), b.Kind())
	}
	ad, _ := a.AsDuration()
	bd, _ := b.AsDuration()
	switch a.Kind() {
	case KindDayTimeDuration:
		total := ad.TotalSeconds() + bd.TotalSeconds()
		return DayTimeDurationVal(durationFromSeconds(total)), nil
	case KindYearMonthDuration:
		total := ad.TotalMonths() + bd.TotalMonths()
		return YearMonthDurationVal(durationFromMonths(total)), nil
	default:
		return Null, errType("not a duration kind: %v", a.Kind())
	}
}

func durationFromSeconds(total int64) *Duration {
	neg := total < 0
	if neg {
		total = -total
	}
	return &Duration{Days: int(total / 86400), Seconds: int(total % 86400), Negative: neg}
}

func durationFromMonths(total int64) *Duration {
	neg := total < 0
	if neg {
		total = -total
	}
	return &Duration{Months: int(total), Negative: neg}
}

// addTemporalDuration implements temporal +/- duration, preserving the
// operand's own kind (Date/Time/DateTime) and date-ness/time-ness.
func addTemporalDuration(kind Kind, t *Temporal, d *Duration, subtract bool) (Value, error) {
	months := d.TotalMonths()
	seconds := d.TotalSeconds()
	if subtract {
		months, seconds = -months, -seconds
	}

	gt := t.ToGoTime()
	if months != 0 {
		gt = gt.AddDate(0, int(months), 0)
	}
	if seconds != 0 {
		gt = gt.Add(time.Duration(seconds) * time.Second)
	}

	out := &Temporal{
		Year: gt.Year(), Month: int(gt.Month()), Day: gt.Day(),
		Hour: gt.Hour(), Minute: gt.Minute(), Second: gt.Second(),
		Nanosecond: gt.Nanosecond(),
		HasDate:    t.HasDate, HasTime: t.HasTime,
		HasOffset: t.HasOffset, OffsetSeconds: t.OffsetSeconds,
	}
	switch kind {
	case KindDate:
		return DateVal(out), nil
	case KindTime:
		return TimeVal(out), nil
	case KindDateTime:
		return DateTimeVal(out), nil
	default:
		return Null, errType("not a temporal kind: %v", kind)
	}
}

// subtractTemporals implements temporal - temporal, always yielding a
// dayTimeDuration: the gap between two points in time.
func subtractTemporals(a, b *Temporal) (Value, error) {
	diff := a.ToGoTime().Sub(b.ToGoTime())
	secs := int64(diff / time.Second)
	return DayTimeDurationVal(durationFromSeconds(secs)), nil
}
