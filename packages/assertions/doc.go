// Package assertions evaluates response expectations for echocheck checks.
//
// Supported expectations:
//   - Exact status code, or status code membership
//   - Field existence and structural equality at a gjson path
//   - Exact or case-insensitive key lookups inside an echoed object
//   - JSON Schema validation of the whole body
//
// Each expectation yields a Result. A check turns a failed Result into a
// *Failure, which the runner counts separately from transport errors.
package assertions
