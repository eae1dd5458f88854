package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitViolations = 2
)

// CommandError wraps an error returned by a command.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ViolationsError is returned when a command was asked to fail on policy
// violations and found some.
type ViolationsError struct {
	Count int
}

func (e *ViolationsError) Error() string {
	return fmt.Sprintf("%d policy violation(s) found", e.Count)
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var verr *ViolationsError
	if errors.As(err, &verr) {
		return ExitViolations
	}
	return ExitError
}
