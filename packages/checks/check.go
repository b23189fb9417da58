package checks

import (
	"context"
	"strings"
)

// Func performs a check's requests and returns nil when every expectation
// holds.
type Func func(ctx context.Context, s *Session) error

// Check is one independent unit of request plus assertion.
type Check struct {
	Name        string
	Description string
	Run         Func
}

// Filter keeps the checks whose name matches any of the comma-separated
// patterns. A pattern may use a leading or trailing * wildcard. An empty
// pattern keeps everything.
func Filter(all []Check, patterns string) []Check {
	var filters []string
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			filters = append(filters, p)
		}
	}
	if len(filters) == 0 {
		return all
	}

	var out []Check
	for _, c := range all {
		for _, f := range filters {
			if matchesPattern(c.Name, f) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}

	prefix := strings.HasSuffix(pattern, "*")
	suffix := strings.HasPrefix(pattern, "*")
	core := strings.Trim(pattern, "*")

	switch {
	case prefix && suffix:
		return strings.Contains(name, core)
	case suffix:
		return strings.HasSuffix(name, core)
	case prefix:
		return strings.HasPrefix(name, core)
	default:
		return name == pattern
	}
}
