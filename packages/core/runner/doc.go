// Package runner executes echocheck checks and accumulates a run summary.
//
// Checks run sequentially in list order. Each check runs inside its own
// failure boundary: an assertion failure, a transport error or a panic
// marks that check failed and the runner moves on to the next one. After a
// run, Passed + Failed always equals the number of checks given.
package runner
