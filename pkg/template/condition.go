package template

import "strings"

// evalCondition evaluates the condition grammar used by #if and #unless:
// a bare path (truthiness), !path (negation), and strict string comparison
// with === or !== where either side may be a dotted path or a quoted literal.
func evalCondition(cond string, ctx Value) bool {
	if left, right, ok := strings.Cut(cond, "!=="); ok {
		return operand(left, ctx) != operand(right, ctx)
	}
	if left, right, ok := strings.Cut(cond, "==="); ok {
		return operand(left, ctx) == operand(right, ctx)
	}
	if rest, ok := strings.CutPrefix(cond, "!"); ok {
		return !ctx.Lookup(strings.TrimSpace(rest)).Truthy()
	}
	return ctx.Lookup(cond).Truthy()
}

// operand resolves one side of a comparison to its string form: quoted
// literals are unquoted, anything else is treated as a path lookup.
func operand(s string, ctx Value) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return ctx.Lookup(s).Text()
}
