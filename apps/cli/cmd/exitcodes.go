package cmd

// Exit codes for echocheck CLI
const (
	// ExitSuccess indicates all checks passed, or failures were informational
	ExitSuccess = 0

	// ExitTestFailure indicates one or more checks failed and --fail-exit was set
	ExitTestFailure = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates the server could not be started
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// ExitError carries the exit code a command wants the process to end with.
type ExitError struct {
	Code int
	Err  error
	// Silent suppresses printing Err; the command already reported it.
	Silent bool
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func configError(err error) error {
	return &ExitError{Code: ExitConfigError, Err: err}
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsageError, Err: err}
}
