// Package shell runs short external commands through sh -c and captures their
// output. Every helper that talks to xdotool, pstree or socat goes through here.
//
// Commands are synchronous for the caller, so callers that sit on an event
// loop must invoke Run from a worker goroutine. Each run is bounded by the
// executor's timeout.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"sublookup/internal/logging"
)

// DefaultTimeout bounds a single command when none is configured.
const DefaultTimeout = 2 * time.Second

// Runner is the capability the rest of the module depends on.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// CommandError reports a command that could not start, exited non-zero, or
// ran out of time. Output holds whatever stdout was captured anyway.
type CommandError struct {
	Command  string
	ExitCode int // -1 when the process never produced an exit status
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *CommandError) Error() string {
	switch {
	case e.TimedOut:
		return fmt.Sprintf("command %q timed out", e.Command)
	case e.ExitCode >= 0:
		if e.Stderr != "" {
			return fmt.Sprintf("command %q exited %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %q exited %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %q: %v", e.Command, e.Err)
	}
}

func (e *CommandError) Unwrap() error { return e.Err }

// Executor runs commands with /bin/sh.
type Executor struct {
	Shell   string
	Timeout time.Duration
	logger  *slog.Logger
}

// New returns an executor with the given per-command timeout.
// A zero timeout selects DefaultTimeout.
func New(timeout time.Duration, logger *slog.Logger) *Executor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Executor{
		Shell:   "sh",
		Timeout: timeout,
		logger:  logging.NewComponentLogger(logger, "shell"),
	}
}

// Run executes command and returns its trimmed stdout. A command that succeeds
// with no output returns ("", nil); any failure returns a *CommandError along
// with the output captured before it failed.
func (e *Executor) Run(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.Shell, "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Give up on inherited pipes held by grandchildren shortly after the kill.
	cmd.WaitDelay = 100 * time.Millisecond

	err := cmd.Run()
	output := strings.TrimSpace(stdout.String())
	e.logger.Debug("command finished", "command", command, "output", output, "error", err)

	if err == nil {
		return output, nil
	}

	cerr := &CommandError{
		Command:  command,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(stderr.String()),
		Err:      err,
	}
	if ctx.Err() == context.DeadlineExceeded {
		cerr.TimedOut = true
		return output, cerr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cerr.ExitCode = exitErr.ExitCode()
	}
	return output, cerr
}

// Quote wraps s in single quotes so it survives sh word splitting unchanged.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// IsExit reports whether err is a *CommandError for a command that ran and
// returned the given exit status.
func IsExit(err error, code int) bool {
	var cerr *CommandError
	return errors.As(err, &cerr) && !cerr.TimedOut && cerr.ExitCode == code
}
