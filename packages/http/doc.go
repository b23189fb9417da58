// Package http provides the HTTP client used by echocheck checks and probes.
//
// It wraps the standard library's http package with additional features:
//   - Configurable client-wide and per-request timeouts
//   - Redirect handling
//   - Query parameters, JSON and form bodies, basic auth
//   - An optional client-side rate limit
//   - Response handling and body reading
package http
