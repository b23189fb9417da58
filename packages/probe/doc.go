// Package probe fetches a list of URLs once each and reports what came back.
//
// A probe makes no assertions. Every URL is attempted even when earlier
// ones fail, and a failure is recorded on its Result rather than returned.
package probe
