package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FromEnv builds the config layer set through environment variables. vars
// holds the variables with their ECHOCHECK_ prefix stripped, as
// env.LoadSystemEnv returns them. Unset keys leave the matching field at its
// zero value so Merge keeps the lower layer.
func FromEnv(vars map[string]string) (*Config, error) {
	cfg := &Config{
		BaseURL: vars["BASE_URL"],
		Proxy:   vars["PROXY"],
	}

	if v := vars["PROBE_URLS"]; v != "" {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				cfg.ProbeURLs = append(cfg.ProbeURLs, u)
			}
		}
	}

	var err error
	if cfg.Timeout, err = envMillis(vars, "TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.DelayTimeout, err = envMillis(vars, "DELAY_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.ProbeTimeout, err = envMillis(vars, "PROBE_TIMEOUT"); err != nil {
		return nil, err
	}

	if v := vars["RATE_LIMIT"]; v != "" {
		cfg.RateLimit, err = strconv.ParseFloat(v, 64)
		if err != nil || cfg.RateLimit < 0 {
			return nil, fmt.Errorf("ECHOCHECK_RATE_LIMIT: invalid value %q", v)
		}
	}

	if cfg.NoColor, err = envBool(vars, "NO_COLOR"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = envBool(vars, "VERBOSE"); err != nil {
		return nil, err
	}
	if cfg.FailExit, err = envBool(vars, "FAIL_EXIT"); err != nil {
		return nil, err
	}
	insecure, err := envBool(vars, "INSECURE")
	if err != nil {
		return nil, err
	}
	if insecure != nil {
		cfg.ValidateSSL = BoolPtr(!*insecure)
	}

	return cfg, nil
}

// envMillis reads a Go duration ("5s") or a bare number of milliseconds.
func envMillis(vars map[string]string, key string) (int, error) {
	v := vars[key]
	if v == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return int(d / time.Millisecond), nil
	}
	if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
		return ms, nil
	}
	return 0, fmt.Errorf("ECHOCHECK_%s: invalid duration %q (use format like 30s or milliseconds)", key, v)
}

func envBool(vars map[string]string, key string) (*bool, error) {
	v := vars[key]
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, fmt.Errorf("ECHOCHECK_%s: invalid boolean %q", key, v)
	}
	return &b, nil
}
