package jsonvalue

import (
	"fmt"
	"math/big"
	"sort"
)

// Equal reports whether a and b are structurally equal. Non-model Go values
// are converted with From first; a value that cannot be converted is never
// equal to anything.
func Equal(a, b any) bool {
	return Diff(a, b) == ""
}

// Diff returns "" when expected and actual are structurally equal, otherwise
// a description of the first difference found, prefixed with its path.
func Diff(expected, actual any) string {
	e, err := From(expected)
	if err != nil {
		return fmt.Sprintf("$: expected value is not JSON-encodable: %v", err)
	}
	a, err := From(actual)
	if err != nil {
		return fmt.Sprintf("$: actual value is not JSON-encodable: %v", err)
	}
	return diff("$", e, a)
}

func diff(path string, expected, actual any) string {
	switch e := expected.(type) {
	case nil:
		if actual != nil {
			return mismatch(path, expected, actual)
		}
		return ""
	case bool:
		if a, ok := actual.(bool); !ok || a != e {
			return mismatch(path, expected, actual)
		}
		return ""
	case string:
		if a, ok := actual.(string); !ok || a != e {
			return mismatch(path, expected, actual)
		}
		return ""
	case Number:
		a, ok := actual.(Number)
		if !ok || !numbersEqual(e, a) {
			return mismatch(path, expected, actual)
		}
		return ""
	case []any:
		a, ok := actual.([]any)
		if !ok {
			return mismatch(path, expected, actual)
		}
		if len(a) != len(e) {
			return fmt.Sprintf("%s: expected %d items, got %d", path, len(e), len(a))
		}
		for i := range e {
			if d := diff(fmt.Sprintf("%s[%d]", path, i), e[i], a[i]); d != "" {
				return d
			}
		}
		return ""
	case *Object:
		a, ok := actual.(*Object)
		if !ok {
			return mismatch(path, expected, actual)
		}
		for _, k := range e.keys {
			av, found := a.values[k]
			if !found {
				return fmt.Sprintf("%s: missing key %q", path, k)
			}
			if d := diff(path+"."+k, e.values[k], av); d != "" {
				return d
			}
		}
		var extra []string
		for _, k := range a.keys {
			if _, found := e.values[k]; !found {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			sort.Strings(extra)
			return fmt.Sprintf("%s: unexpected keys %q", path, extra)
		}
		return ""
	}
	return fmt.Sprintf("%s: unsupported value type %T", path, expected)
}

func mismatch(path string, expected, actual any) string {
	if TypeName(expected) != TypeName(actual) {
		return fmt.Sprintf("%s: expected %s %s, got %s %s",
			path, TypeName(expected), Encode(expected), TypeName(actual), Encode(actual))
	}
	return fmt.Sprintf("%s: expected %s, got %s", path, Encode(expected), Encode(actual))
}

func numbersEqual(a, b Number) bool {
	if a == b {
		return true
	}
	x, okX := new(big.Rat).SetString(string(a))
	y, okY := new(big.Rat).SetString(string(b))
	if !okX || !okY {
		return false
	}
	return x.Cmp(y) == 0
}
