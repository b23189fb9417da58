package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the echocheck configuration
type Config struct {
	BaseURL      string            `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
	ProbeURLs    []string          `json:"probeURLs,omitempty" yaml:"probeURLs,omitempty"`
	Timeout      int               `json:"timeout,omitempty" yaml:"timeout,omitempty"`           // milliseconds
	DelayTimeout int               `json:"delayTimeout,omitempty" yaml:"delayTimeout,omitempty"` // milliseconds
	ProbeTimeout int               `json:"probeTimeout,omitempty" yaml:"probeTimeout,omitempty"` // milliseconds
	RateLimit    float64           `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`       // requests per second
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`           // Default headers for all requests
	Reporters    []string          `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	Proxy        string            `json:"proxy,omitempty" yaml:"proxy,omitempty"`
	ValidateSSL  *bool             `json:"validateSSL,omitempty" yaml:"validateSSL,omitempty"`
	NoColor      *bool             `json:"noColor,omitempty" yaml:"noColor,omitempty"`
	Verbose      *bool             `json:"verbose,omitempty" yaml:"verbose,omitempty"`
	FailExit     *bool             `json:"failExit,omitempty" yaml:"failExit,omitempty"`
}

// BoolPtr returns a pointer to b
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetFailExit returns whether a failing run should exit non-zero, defaulting to false
func (c *Config) GetFailExit() bool {
	return getBool(c.FailExit, false)
}

func (c *Config) TimeoutDuration() time.Duration {
	return millis(c.Timeout)
}

func (c *Config) DelayTimeoutDuration() time.Duration {
	return millis(c.DelayTimeout)
}

func (c *Config) ProbeTimeoutDuration() time.Duration {
	return millis(c.ProbeTimeout)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// ConfigFilenames contains the possible config file names, in lookup order
var ConfigFilenames = []string{
	".echocheck.yaml",
	".echocheck.yml",
	"echocheck.config.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	if path := FindConfigFile(dir); path != "" {
		return loadConfigFromFile(path)
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// FindConfigFile returns the first config file present in dir, or "".
func FindConfigFile(dir string) string {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}
	return ""
}

// loadConfigFromFile loads configuration from a specific file. Files ending
// in .json are decoded as JSON, everything else as YAML.
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	config := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	if c.Timeout < 0 || c.DelayTimeout < 0 || c.ProbeTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit must not be negative")
	}
	for _, r := range c.Reporters {
		if !isReporter(r) {
			return fmt.Errorf("unknown reporter %q (want one of %s)", r, strings.Join(Reporters, ", "))
		}
	}
	return nil
}

// Reporters lists the accepted reporter names.
var Reporters = []string{"console", "json", "junit", "tap"}

func isReporter(name string) bool {
	for _, r := range Reporters {
		if r == name {
			return true
		}
	}
	return false
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if len(other.ProbeURLs) > 0 {
		result.ProbeURLs = other.ProbeURLs
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.DelayTimeout > 0 {
		result.DelayTimeout = other.DelayTimeout
	}
	if other.ProbeTimeout > 0 {
		result.ProbeTimeout = other.ProbeTimeout
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}

	// Boolean flags - only override if explicitly set in other config
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.FailExit != nil {
		result.FailExit = other.FailExit
	}

	if len(other.Headers) > 0 {
		headers := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			headers[k] = v
		}
		for k, v := range other.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}

	if len(other.Reporters) > 0 {
		result.Reporters = other.Reporters
	}

	return &result
}
