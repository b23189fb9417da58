package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://httpbin.org", cfg.BaseURL)
	assert.Equal(t, DefaultProbeURLs, cfg.ProbeURLs)
	assert.Equal(t, 30000, cfg.Timeout)
	assert.Equal(t, 5000, cfg.DelayTimeout)
	assert.Equal(t, 10000, cfg.ProbeTimeout)
	assert.Equal(t, []string{"console"}, cfg.Reporters)
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetFailExit())
	assert.NoError(t, cfg.Validate())
}

func TestGetters_NilPointers(t *testing.T) {
	cfg := &Config{}
	assert.True(t, cfg.GetValidateSSL())
	assert.False(t, cfg.GetNoColor())
	assert.False(t, cfg.GetVerbose())
	assert.False(t, cfg.GetFailExit())
	assert.Zero(t, cfg.TimeoutDuration())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".echocheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
baseURL: http://localhost:8080
timeout: 2000
rateLimit: 5
headers:
  X-Team: qa
failExit: true
`), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 2000, cfg.Timeout)
	assert.Equal(t, "2s", cfg.TimeoutDuration().String())
	assert.Equal(t, 5.0, cfg.RateLimit)
	assert.Equal(t, "qa", cfg.Headers["X-Team"])
	assert.True(t, cfg.GetFailExit())
	// Unset values keep their defaults.
	assert.Equal(t, 5000, cfg.DelayTimeout)
	assert.Equal(t, DefaultProbeURLs, cfg.ProbeURLs)
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "echocheck.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"probeURLs": ["http://localhost:8080/get"], "reporters": ["junit"]}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:8080/get"}, cfg.ProbeURLs)
	assert.Equal(t, []string{"junit"}, cfg.Reporters)
}

func TestFindAndLoadConfig_PrefersYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "echocheck.config.json"), []byte(`{"baseURL": "http://json"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".echocheck.yml"), []byte(`baseURL: http://yaml`), 0644))

	cfg, err := FindAndLoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://yaml", cfg.BaseURL)
}

func TestFindAndLoadConfig_NoFile(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"timeout": `), 0644))
	_, err = LoadConfig(bad)
	assert.ErrorContains(t, err, "parsing config")

	unknown := filepath.Join(dir, "reporter.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("reporters: [html]\n"), 0644))
	_, err = LoadConfig(unknown)
	assert.ErrorContains(t, err, `unknown reporter "html"`)

	negative := filepath.Join(dir, "negative.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("timeout: -1\n"), 0644))
	_, err = LoadConfig(negative)
	assert.ErrorContains(t, err, "must not be negative")
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Headers = map[string]string{"A": "1"}

	merged := base.Merge(&Config{
		BaseURL:  "http://override",
		Timeout:  1000,
		Headers:  map[string]string{"B": "2"},
		NoColor:  BoolPtr(true),
		FailExit: BoolPtr(true),
	})

	assert.Equal(t, "http://override", merged.BaseURL)
	assert.Equal(t, 1000, merged.Timeout)
	assert.Equal(t, 5000, merged.DelayTimeout)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, merged.Headers)
	assert.True(t, merged.GetNoColor())
	assert.True(t, merged.GetFailExit())

	// The receiver is left untouched.
	assert.Equal(t, map[string]string{"A": "1"}, base.Headers)
	assert.False(t, base.GetNoColor())

	assert.Same(t, base, base.Merge(nil))
}

func TestFromEnv(t *testing.T) {
	cfg, err := FromEnv(map[string]string{
		"BASE_URL":      "http://env",
		"PROBE_URLS":    "http://a/get, http://b/",
		"TIMEOUT":       "2s",
		"PROBE_TIMEOUT": "1500",
		"RATE_LIMIT":    "2.5",
		"INSECURE":      "true",
		"FAIL_EXIT":     "1",
	})
	require.NoError(t, err)

	assert.Equal(t, "http://env", cfg.BaseURL)
	assert.Equal(t, []string{"http://a/get", "http://b/"}, cfg.ProbeURLs)
	assert.Equal(t, 2000, cfg.Timeout)
	assert.Equal(t, 0, cfg.DelayTimeout)
	assert.Equal(t, 1500, cfg.ProbeTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.False(t, cfg.GetValidateSSL())
	assert.True(t, cfg.GetFailExit())
	assert.Nil(t, cfg.NoColor)

	// Unset variables keep the file layer.
	base := DefaultConfig()
	base.BaseURL = "http://file"
	base.DelayTimeout = 7000
	merged := base.Merge(cfg)
	assert.Equal(t, "http://env", merged.BaseURL)
	assert.Equal(t, 7000, merged.DelayTimeout)
	assert.Equal(t, 2000, merged.Timeout)
	assert.False(t, merged.GetNoColor())
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value, msg string
	}{
		{"TIMEOUT", "soon", "ECHOCHECK_TIMEOUT: invalid duration"},
		{"DELAY_TIMEOUT", "-5", "ECHOCHECK_DELAY_TIMEOUT: invalid duration"},
		{"RATE_LIMIT", "fast", "ECHOCHECK_RATE_LIMIT: invalid value"},
		{"NO_COLOR", "maybe", "ECHOCHECK_NO_COLOR: invalid boolean"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, err := FromEnv(map[string]string{tt.key: tt.value})
			assert.ErrorContains(t, err, tt.msg)
		})
	}
}
