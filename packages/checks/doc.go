// Package checks defines the contract checks echocheck runs against an
// httpbin-compatible service.
//
// Each check is a plain function over a Session: it sends its requests,
// evaluates expectations, and returns an error. Checks never print; the
// Session records exchanges and assertion results for the reporters.
package checks
