// Package config handles configuration loading and management for echocheck.
//
// It provides functionality for:
//   - Loading configuration from .echocheck.yaml, .echocheck.yml or
//     echocheck.config.json
//   - Default configuration values
//   - Merging file settings with command line overrides
package config
