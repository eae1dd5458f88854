package cli

import (
	"errors"
	"testing"
)

func TestCommandError(t *testing.T) {
	base := errors.New("source unavailable")
	err := NewCommandError("scan", base)

	if got := err.Error(); got != "command scan failed: source unavailable" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, base) {
		t.Error("CommandError should unwrap to the cause")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", errors.New("boom"), ExitError},
		{"violations", &ViolationsError{Count: 3}, ExitViolations},
		{"wrapped violations", NewCommandError("audit", &ViolationsError{Count: 1}), ExitViolations},
		{"wrapped error", NewCommandError("audit", errors.New("boom")), ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestViolationsError(t *testing.T) {
	if got := (&ViolationsError{Count: 2}).Error(); got != "2 policy violation(s) found" {
		t.Errorf("Error() = %q", got)
	}
}
