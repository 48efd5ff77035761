package feel

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

type builtinFunc func(pos []Value, named map[string]Value) (Value, error)

// builtinRegistry maps a FEEL built-in's (possibly multi-word) name,
// exactly as the greedy name-resolution algorithm in names.go would
// produce it, to its implementation: numeric aggregation, string,
// list, context, and conversion functions.
var builtinRegistry = map[string]builtinFunc{
	"not": biNot,

	"sum":    biSum,
	"min":    biMin,
	"max":    biMax,
	"count":  biCount,
	"mean":   biMean,
	"median": biMedian,
	"mode":   biMode,
	"stddev": biStddev,

	"substring":    biSubstring,
	"string length": biStringLength,
	"upper case":   biUpperCase,
	"lower case":   biLowerCase,
	"contains":     biContains,
	"starts with":  biStartsWith,
	"ends with":    biEndsWith,
	"matches":      biMatches,
	"replace":      biReplace,
	"split":        biSplit,
	"string join":  biStringJoin,

	"list contains":   biListContains,
	"append":          biAppend,
	"concatenate":     biConcatenate,
	"insert before":   biInsertBefore,
	"remove":          biRemove,
	"reverse":         biReverse,
	"index of":        biIndexOf,
	"distinct values": biDistinctValues,
	"flatten":         biFlatten,
	"sort":            biSort,

	"get value":   biGetValue,
	"get entries": biGetEntries,

	"number":                    biNumber,
	"string":                    biString,
	"date":                      biDate,
	"time":                      biTime,
	"date and time":             biDateAndTime,
	"duration":                  biDuration,
	"years and months duration": biYearsAndMonthsDuration,
}

func callBuiltin(name string, pos []Value, named map[string]Value) (Value, error) {
	fn, ok := builtinRegistry[name]
	if !ok {
		return Null, errBuiltin(name, errors.New("unknown built-in function"))
	}
	return fn(pos, named)
}

func arg(pos []Value, named map[string]Value, i int, key string) (Value, bool) {
	if named != nil {
		v, ok := named[key]
		return v, ok
	}
	if i < len(pos) {
		return pos[i], true
	}
	return Null, false
}

func argOrNull(pos []Value, named map[string]Value, i int, key string) Value {
	v, ok := arg(pos, named, i, key)
	if !ok {
		return Null
	}
	return v
}

// numbersFromArgs accepts either a single list argument or a run of
// positional number arguments, as the aggregation functions do.
func numbersFromArgs(pos []Value) ([]*apd.Decimal, error) {
	var vals []Value
	if len(pos) == 1 {
		if list, ok := pos[0].AsList(); ok {
			vals = list
		} else {
			vals = pos
		}
	} else {
		vals = pos
	}
	nums := make([]*apd.Decimal, 0, len(vals))
	for _, v := range vals {
		n, ok := v.AsNumber()
		if !ok {
			return nil, errType("expected number, got %v", v.Kind())
		}
		nums = append(nums, n)
	}
	return nums, nil
}

func biNot(pos []Value, named map[string]Value) (Value, error) {
	v := argOrNull(pos, named, 0, "negand")
	b, ok := v.AsBool()
	if !ok {
		return Null, nil
	}
	return Bool(!b), nil
}

func biSum(pos []Value, named map[string]Value) (Value, error) {
	nums, err := numbersFromArgs(pos)
	if err != nil {
		return Null, err
	}
	if len(nums) == 0 {
		return Null, nil
	}
	total := apd.New(0, 0)
	for _, n := range nums {
		total, err = decAdd(total, n)
		if err != nil {
			return Null, err
		}
	}
	return Number(total), nil
}

func biMin(pos []Value, named map[string]Value) (Value, error) {
	nums, err := numbersFromArgs(pos)
	if err != nil {
		return Null, err
	}
	if len(nums) == 0 {
		return Null, nil
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if decCmp(n, best) < 0 {
			best = n
		}
	}
	return Number(best), nil
}

func biMax(pos []Value, named map[string]Value) (Value, error) {
	nums, err := numbersFromArgs(pos)
	if err != nil {
		return Null, err
	}
	if len(nums) == 0 {
		return Null, nil
	}
	best := nums[0]
	for _, n := range nums[1:] {
		if decCmp(n, best) > 0 {
			best = n
		}
	}
	return Number(best), nil
}

func biCount(pos []Value, named map[string]Value) (Value, error) {
	v := argOrNull(pos, named, 0, "list")
	list, ok := v.AsList()
	if !ok {
		return NumberFromInt64(0), nil
	}
	return NumberFromInt64(int64(len(list))), nil
}

func biMean(pos []Value, named map[string]Value) (Value, error) {
	nums, err := numbersFromArgs(pos)
	if err != nil {
		return Null, err
	}
	if len(nums) == 0 {
		return Null, nil
	}
	total := apd.New(0, 0)
	for _, n := range nums {
		total, err = decAdd(total, n)
		if err != nil {
			return Null, err
		}
	}
	res, _, err := decDiv(total, apd.New(int64(len(nums)), 0))
	if err != nil {
		return Null, err
	}
	return Number(res), nil
}

func biMedian(pos []Value, named map[string]Value) (Value, error) {
	nums, err := numbersFromArgs(pos)
	if err != nil {
		return Null, err
	}
	if len(nums) == 0 {
		return Null, nil
	}
	sorted := append([]*apd.Decimal(nil), nums...)
	sort.Slice(sorted, func(i, j int) bool { return decCmp(sorted[i], sorted[j]) < 0 })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return Number(sorted[mid]), nil
	}
	res, _, err := decDiv(mustAdd(sorted[mid-1], sorted[mid]), apd.New(2, 0))
	if err != nil {
		return Null, err
	}
	return Number(res), nil
}

func mustAdd(a, b *apd.Decimal) *apd.Decimal {
	res, _ := decAdd(a, b)
	return res
}

func biMode(pos []Value, named map[string]Value) (Value, error) {
	nums, err := numbersFromArgs(pos)
	if err != nil {
		return Null, err
	}
	if len(nums) == 0 {
		return List(nil), nil
	}
	sorted := append([]*apd.Decimal(nil), nums...)
	sort.Slice(sorted, func(i, j int) bool { return decCmp(sorted[i], sorted[j]) < 0 })
	bestCount, count := 0, 1
	var modes []*apd.Decimal
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && decCmp(sorted[i], sorted[i-1]) == 0 {
			count++
			continue
		}
		if count > bestCount {
			bestCount = count
			modes = []*apd.Decimal{sorted[i-1]}
		} else if count == bestCount {
			modes = append(modes, sorted[i-1])
		}
		count = 1
	}
	out := make([]Value, len(modes))
	for i, m := range modes {
		out[i] = Number(m)
	}
	return List(out), nil
}

func biStddev(pos []Value, named map[string]Value) (Value, error) {
	nums, err := numbersFromArgs(pos)
	if err != nil {
		return Null, err
	}
	if len(nums) < 2 {
		return Null, nil
	}
	meanV, err := biMean(pos, named)
	if err != nil {
		return Null, err
	}
	meanN, _ := meanV.AsNumber()
	sumSq := apd.New(0, 0)
	for _, n := range nums {
		diff, err := decSub(n, meanN)
		if err != nil {
			return Null, err
		}
		sq, err := decMul(diff, diff)
		if err != nil {
			return Null, err
		}
		sumSq, err = decAdd(sumSq, sq)
		if err != nil {
			return Null, err
		}
	}
	variance, _, err := decDiv(sumSq, apd.New(int64(len(nums)-1), 0))
	if err != nil {
		return Null, err
	}
	res := new(apd.Decimal)
	if _, err := DecimalContext.Sqrt(res, variance); err != nil {
		return Null, err
	}
	return Number(res), nil
}

func toRunes(v Value) ([]rune, bool) {
	s, ok := v.AsString()
	if !ok {
		return nil, false
	}
	return []rune(s), true
}

func intArg(pos []Value, named map[string]Value, i int, key string) (int64, bool) {
	v, ok := arg(pos, named, i, key)
	if !ok {
		return 0, false
	}
	n, ok := v.AsNumber()
	if !ok {
		return 0, false
	}
	i64, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i64, true
}

func biSubstring(pos []Value, named map[string]Value) (Value, error) {
	runes, ok := toRunes(argOrNull(pos, named, 0, "string"))
	if !ok {
		return Null, errType("substring requires a string")
	}
	start, ok := intArg(pos, named, 1, "start position")
	if !ok {
		return Null, errType("substring requires a numeric start position")
	}
	idx := int(start)
	if idx < 0 {
		idx = len(runes) + idx + 1
	}
	if idx < 1 {
		idx = 1
	}
	if idx > len(runes)+1 {
		return String(""), nil
	}
	if length, ok := intArg(pos, named, 2, "length"); ok {
		end := idx - 1 + int(length)
		if end > len(runes) {
			end = len(runes)
		}
		if end < idx-1 {
			end = idx - 1
		}
		return String(string(runes[idx-1 : end])), nil
	}
	return String(string(runes[idx-1:])), nil
}

func biStringLength(pos []Value, named map[string]Value) (Value, error) {
	runes, ok := toRunes(argOrNull(pos, named, 0, "string"))
	if !ok {
		return Null, errType("string length requires a string")
	}
	return NumberFromInt64(int64(len(runes))), nil
}

func biUpperCase(pos []Value, named map[string]Value) (Value, error) {
	s, ok := argOrNull(pos, named, 0, "string").AsString()
	if !ok {
		return Null, errType("upper case requires a string")
	}
	return String(strings.ToUpper(s)), nil
}

func biLowerCase(pos []Value, named map[string]Value) (Value, error) {
	s, ok := argOrNull(pos, named, 0, "string").AsString()
	if !ok {
		return Null, errType("lower case requires a string")
	}
	return String(strings.ToLower(s)), nil
}

func biContains(pos []Value, named map[string]Value) (Value, error) {
	s, _ := argOrNull(pos, named, 0, "string").AsString()
	match, _ := argOrNull(pos, named, 1, "match").AsString()
	return Bool(strings.Contains(s, match)), nil
}

func biStartsWith(pos []Value, named map[string]Value) (Value, error) {
	s, _ := argOrNull(pos, named, 0, "string").AsString()
	match, _ := argOrNull(pos, named, 1, "match").AsString()
	return Bool(strings.HasPrefix(s, match)), nil
}

func biEndsWith(pos []Value, named map[string]Value) (Value, error) {
	s, _ := argOrNull(pos, named, 0, "string").AsString()
	match, _ := argOrNull(pos, named, 1, "match").AsString()
	return Bool(strings.HasSuffix(s, match)), nil
}

func biMatches(pos []Value, named map[string]Value) (Value, error) {
	s, _ := argOrNull(pos, named, 0, "input").AsString()
	pattern, _ := argOrNull(pos, named, 1, "pattern").AsString()
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Null, errBuiltin("matches", err)
	}
	return Bool(re.MatchString(s)), nil
}

func biReplace(pos []Value, named map[string]Value) (Value, error) {
	s, _ := argOrNull(pos, named, 0, "input").AsString()
	pattern, _ := argOrNull(pos, named, 1, "pattern").AsString()
	repl, _ := argOrNull(pos, named, 2, "replacement").AsString()
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Null, errBuiltin("replace", err)
	}
	return String(re.ReplaceAllString(s, repl)), nil
}

func biSplit(pos []Value, named map[string]Value) (Value, error) {
	s, _ := argOrNull(pos, named, 0, "string").AsString()
	delim, _ := argOrNull(pos, named, 1, "delimiter").AsString()
	re, err := regexp.Compile(delim)
	if err != nil {
		return Null, errBuiltin("split", err)
	}
	parts := re.Split(s, -1)
	out := make([]Value, len(parts))
	for i, p := range parts {
		out[i] = String(p)
	}
	return List(out), nil
}

func biStringJoin(pos []Value, named map[string]Value) (Value, error) {
	listV := argOrNull(pos, named, 0, "list")
	items, ok := listV.AsList()
	if !ok {
		return Null, errType("string join requires a list")
	}
	delim := ""
	if d, ok := argOrNull(pos, named, 1, "delimiter").AsString(); ok {
		delim = d
	}
	parts := make([]string, len(items))
	for i, it := range items {
		s, _ := it.AsString()
		parts[i] = s
	}
	return String(strings.Join(parts, delim)), nil
}

func biListContains(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Bool(false), nil
	}
	target := argOrNull(pos, named, 1, "element")
	for _, it := range items {
		if Equal(it, target) {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func biAppend(pos []Value, named map[string]Value) (Value, error) {
	if len(pos) == 0 {
		return List(nil), nil
	}
	items, ok := pos[0].AsList()
	if !ok {
		return Null, errType("append requires a list")
	}
	out := append([]Value(nil), items...)
	out = append(out, pos[1:]...)
	return List(out), nil
}

func biConcatenate(pos []Value, named map[string]Value) (Value, error) {
	var out []Value
	for _, v := range pos {
		items, ok := v.AsList()
		if !ok {
			return Null, errType("concatenate requires lists")
		}
		out = append(out, items...)
	}
	return List(out), nil
}

func biInsertBefore(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Null, errType("insert before requires a list")
	}
	position, ok := intArg(pos, named, 1, "position")
	if !ok {
		return Null, errType("insert before requires a numeric position")
	}
	newItem := argOrNull(pos, named, 2, "newItem")
	idx := int(position)
	if idx < 1 {
		idx = 1
	}
	if idx > len(items)+1 {
		idx = len(items) + 1
	}
	out := make([]Value, 0, len(items)+1)
	out = append(out, items[:idx-1]...)
	out = append(out, newItem)
	out = append(out, items[idx-1:]...)
	return List(out), nil
}

func biRemove(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Null, errType("remove requires a list")
	}
	position, ok := intArg(pos, named, 1, "position")
	if !ok {
		return Null, errType("remove requires a numeric position")
	}
	idx := int(position)
	if idx < 1 || idx > len(items) {
		return List(append([]Value(nil), items...)), nil
	}
	out := make([]Value, 0, len(items)-1)
	out = append(out, items[:idx-1]...)
	out = append(out, items[idx:]...)
	return List(out), nil
}

func biReverse(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Null, errType("reverse requires a list")
	}
	out := make([]Value, len(items))
	for i, v := range items {
		out[len(items)-1-i] = v
	}
	return List(out), nil
}

func biIndexOf(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Null, errType("index of requires a list")
	}
	target := argOrNull(pos, named, 1, "match")
	var out []Value
	for i, it := range items {
		if Equal(it, target) {
			out = append(out, NumberFromInt64(int64(i+1)))
		}
	}
	return List(out), nil
}

func biDistinctValues(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Null, errType("distinct values requires a list")
	}
	var out []Value
	for _, it := range items {
		dup := false
		for _, seen := range out {
			if Equal(it, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, it)
		}
	}
	return List(out), nil
}

func biFlatten(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Null, errType("flatten requires a list")
	}
	return List(flattenValues(items)), nil
}

func flattenValues(items []Value) []Value {
	var out []Value
	for _, it := range items {
		if sub, ok := it.AsList(); ok {
			out = append(out, flattenValues(sub)...)
		} else {
			out = append(out, it)
		}
	}
	return out
}

func biSort(pos []Value, named map[string]Value) (Value, error) {
	items, ok := argOrNull(pos, named, 0, "list").AsList()
	if !ok {
		return Null, errType("sort requires a list")
	}
	out := append([]Value(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		cmp, ok := Order(out[i], out[j])
		if !ok {
			return false
		}
		return cmp < 0
	})
	return List(out), nil
}

func biGetValue(pos []Value, named map[string]Value) (Value, error) {
	ctx, ok := argOrNull(pos, named, 0, "m").AsContext()
	if !ok {
		return Null, errType("get value requires a context")
	}
	key, _ := argOrNull(pos, named, 1, "key").AsString()
	v, ok := ctx.Get(key)
	if !ok {
		return Null, nil
	}
	return v, nil
}

func biGetEntries(pos []Value, named map[string]Value) (Value, error) {
	ctx, ok := argOrNull(pos, named, 0, "m").AsContext()
	if !ok {
		return Null, errType("get entries requires a context")
	}
	var out []Value
	for _, k := range ctx.Keys() {
		v, _ := ctx.Get(k)
		entry := NewContext()
		entry.Set("key", String(k))
		entry.Set("value", v)
		out = append(out, ContextVal(entry))
	}
	return List(out), nil
}

func biNumber(pos []Value, named map[string]Value) (Value, error) {
	s, ok := argOrNull(pos, named, 0, "from").AsString()
	if !ok {
		return Null, errType("number requires a string")
	}
	if grouping, ok := argOrNull(pos, named, 1, "grouping separator").AsString(); ok && grouping != "" {
		s = strings.ReplaceAll(s, grouping, "")
	}
	if decSep, ok := argOrNull(pos, named, 2, "decimal separator").AsString(); ok && decSep != "" && decSep != "." {
		s = strings.ReplaceAll(s, decSep, ".")
	}
	return NumberFromString(strings.TrimSpace(s))
}

func biString(pos []Value, named map[string]Value) (Value, error) {
	v := argOrNull(pos, named, 0, "from")
	if v.IsNull() {
		return Null, nil
	}
	return String(v.String()), nil
}

func biDate(pos []Value, named map[string]Value) (Value, error) {
	if len(pos) == 3 {
		y, _ := intArg(pos, named, 0, "year")
		m, _ := intArg(pos, named, 1, "month")
		d, _ := intArg(pos, named, 2, "day")
		return DateVal(&Temporal{Year: int(y), Month: int(m), Day: int(d), HasDate: true}), nil
	}
	v := argOrNull(pos, named, 0, "from")
	if s, ok := v.AsString(); ok {
		t, err := ParseDate(s)
		if err != nil {
			return Null, errBuiltin("date", err)
		}
		return DateVal(t), nil
	}
	if t, ok := v.AsTemporal(); ok {
		return DateVal(&Temporal{Year: t.Year, Month: t.Month, Day: t.Day, HasDate: true}), nil
	}
	return Null, errType("date: unsupported argument")
}

func biTime(pos []Value, named map[string]Value) (Value, error) {
	v := argOrNull(pos, named, 0, "from")
	if s, ok := v.AsString(); ok {
		t, err := ParseTime(s)
		if err != nil {
			return Null, errBuiltin("time", err)
		}
		return TimeVal(t), nil
	}
	if t, ok := v.AsTemporal(); ok {
		return TimeVal(&Temporal{
			Hour: t.Hour, Minute: t.Minute, Second: t.Second, Nanosecond: t.Nanosecond,
			HasTime: true, HasOffset: t.HasOffset, OffsetSeconds: t.OffsetSeconds,
		}), nil
	}
	return Null, errType("time: unsupported argument")
}

func biDateAndTime(pos []Value, named map[string]Value) (Value, error) {
	dateV := argOrNull(pos, named, 0, "date")
	timeV := argOrNull(pos, named, 1, "time")
	dt, ok := dateV.AsTemporal()
	if !ok {
		return Null, errType("date and time: first argument must be a date")
	}
	tt, ok := timeV.AsTemporal()
	if !ok {
		return Null, errType("date and time: second argument must be a time")
	}
	return DateTimeVal(&Temporal{
		Year: dt.Year, Month: dt.Month, Day: dt.Day,
		Hour: tt.Hour, Minute: tt.Minute, Second: tt.Second, Nanosecond: tt.Nanosecond,
		HasDate: true, HasTime: true, HasOffset: tt.HasOffset, OffsetSeconds: tt.OffsetSeconds,
	}), nil
}

func biDuration(pos []Value, named map[string]Value) (Value, error) {
	s, ok := argOrNull(pos, named, 0, "from").AsString()
	if !ok {
		return Null, errType("duration requires a string")
	}
	ev := &Evaluator{}
	v, err := ev.evalTemporalLiteral(s)
	if err != nil {
		return Null, err
	}
	if v.Kind() != KindDayTimeDuration && v.Kind() != KindYearMonthDuration {
		return Null, errBuiltin("duration", errors.New("not a duration literal"))
	}
	return v, nil
}

func biYearsAndMonthsDuration(pos []Value, named map[string]Value) (Value, error) {
	from, ok := argOrNull(pos, named, 0, "from").AsTemporal()
	if !ok {
		return Null, errType("years and months duration requires dates")
	}
	to, ok := argOrNull(pos, named, 1, "to").AsTemporal()
	if !ok {
		return Null, errType("years and months duration requires dates")
	}
	months := int64(to.Year-from.Year)*12 + int64(to.Month-from.Month)
	if to.Day < from.Day {
		months--
	}
	return YearMonthDurationVal(durationFromMonths(months)), nil
}
