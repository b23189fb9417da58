package env

import (
	"os"
	"strconv"
	"strings"
)

// Prefix namespaces every variable echocheck reads.
const Prefix = "ECHOCHECK_"

// Key returns the prefixed variable name for a flag name, so "base-url"
// becomes ECHOCHECK_BASE_URL.
func Key(name string) string {
	return Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// String returns the value of the prefixed variable, or def when unset or empty.
func String(name, def string) string {
	if v := os.Getenv(Key(name)); v != "" {
		return v
	}
	return def
}

// Bool accepts the forms strconv.ParseBool does. Anything else yields def.
func Bool(name string, def bool) bool {
	v := os.Getenv(Key(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func Float(name string, def float64) float64 {
	v := os.Getenv(Key(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// LoadSystemEnv returns the prefixed variables with the prefix stripped,
// so ECHOCHECK_BASE_URL is returned under BASE_URL.
func LoadSystemEnv() map[string]string {
	result := make(map[string]string)
	for _, e := range os.Environ() {
		key, value, ok := strings.Cut(e, "=")
		if !ok || !strings.HasPrefix(key, Prefix) || len(key) == len(Prefix) {
			continue
		}
		result[strings.TrimPrefix(key, Prefix)] = value
	}
	return result
}
