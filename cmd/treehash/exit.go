package treehash

import (
	"errors"
	"fmt"

	"github.com/treehash/treehash/internal/engine"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFilesFailed = 1
	exitErrors      = 2
	exitInvalid     = -1
	exitFailure     = -2
)

// exitError carries a process exit code. A nil err means the code is a run
// outcome, not a failure to report.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func invalidf(format string, args ...any) error {
	return &exitError{code: exitInvalid, err: fmt.Errorf(format, args...)}
}

// engineError maps a fatal engine error to the configuration or the
// runtime exit code.
func engineError(err error) error {
	if engine.KindOf(err) == engine.KindConfig {
		return &exitError{code: exitInvalid, err: err}
	}
	return &exitError{code: exitFailure, err: err}
}

func statusError(s engine.Status) error {
	switch s {
	case engine.StatusErrors:
		return &exitError{code: exitErrors}
	case engine.StatusFilesFailed:
		return &exitError{code: exitFilesFailed}
	default:
		return nil
	}
}

// exitCode returns the process exit code for the error returned by the
// root command.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	return exitFailure
}

// reportable reports whether err should be printed before exiting.
func reportable(err error) bool {
	var e *exitError
	if errors.As(err, &e) {
		return e.err != nil
	}
	return err != nil
}
