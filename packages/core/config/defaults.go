package config

// DefaultProbeURLs are fetched by the probe when none are configured.
var DefaultProbeURLs = []string{
	"https://reqres.in/api/users/2",
	"https://reqres.in/",
	"http://httpbin.org/get",
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://httpbin.org",
		ProbeURLs:    append([]string(nil), DefaultProbeURLs...),
		Timeout:      30000, // 30 seconds
		DelayTimeout: 5000,
		ProbeTimeout: 10000,
		RateLimit:    0,
		Reporters:    []string{"console"},
		ValidateSSL:  BoolPtr(true),
		NoColor:      BoolPtr(false),
		Verbose:      BoolPtr(false),
		FailExit:     BoolPtr(false),
	}
}
