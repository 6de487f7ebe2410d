package generate

import (
	"fmt"
	"strings"

	"regen/internal/model"
)

// Eval evaluates a condition expression against the model's key-value
// environment. The language is deliberately small:
//
//	key            truthy lookup (missing key is false)
//	!key           negated truthy lookup
//	key == value   string comparison against the key's value
//	key != value   negated comparison
//
// Comparisons against a key absent from the model are unevaluable rather
// than silently false.
func Eval(condition string, snap *model.Snapshot) (bool, error) {
	expr := strings.TrimSpace(condition)
	if expr == "" {
		return false, fmt.Errorf("%w: empty condition", ErrUnevaluableCondition)
	}

	if op, negate := findOperator(expr); op >= 0 {
		key := strings.TrimSpace(expr[:op])
		want := trimQuotes(strings.TrimSpace(expr[op+2:]))
		if key == "" {
			return false, fmt.Errorf("%w: %q", ErrUnevaluableCondition, condition)
		}
		got, ok := snap.String(key)
		if !ok {
			return false, fmt.Errorf("%w: key %q not in model", ErrUnevaluableCondition, key)
		}
		if negate {
			return got != want, nil
		}
		return got == want, nil
	}

	if strings.ContainsAny(expr, " \t") {
		return false, fmt.Errorf("%w: %q", ErrUnevaluableCondition, condition)
	}
	if strings.HasPrefix(expr, "!") {
		return !snap.Truthy(expr[1:]), nil
	}
	return snap.Truthy(expr), nil
}

// findOperator locates "==" or "!=", returning its index and whether it
// negates. Returns -1 when the expression is a bare lookup.
func findOperator(expr string) (int, bool) {
	if i := strings.Index(expr, "=="); i >= 0 {
		return i, false
	}
	if i := strings.Index(expr, "!="); i >= 0 {
		return i, true
	}
	return -1, false
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
