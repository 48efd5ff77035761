package feel

import "strings"

// ResolveName implements greedy longest-match name resolution: the
// parser has already concatenated a maximal run of NAME/digit-run
// tokens into raw; here we try that full run, then progressively
// shorter prefixes, against the names declared in env, and return the
// first (longest) match. A production implementation might precompute
// a trie per definition; declaredNames is small enough per evaluation
// frame that a linear prefix scan is the pragmatic equivalent without
// the extra structure.
func ResolveName(env *Environment, raw string) (Value, bool) {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return Null, false
	}
	for length := len(words); length >= 1; length-- {
		candidate := strings.Join(words[:length], " ")
		if v, ok := env.lookupExact(candidate); ok {
			return v, true
		}
	}
	return Null, false
}
