package cmd

import "errors"

// exitError carries a process exit code alongside the underlying error. The
// run-plan subcommands use exit code 2 for parse and validation failures so
// shell callers can tell them apart from usage errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

// ExitCode returns the exit code a command error asks for, defaulting to 1.
func ExitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
