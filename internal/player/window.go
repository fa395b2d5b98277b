package player

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sublookup/internal/media"
	"sublookup/internal/shell"
)

// WindowNotFoundError means the player never showed a visible window within
// the retry budget. It is fatal for the session.
type WindowNotFoundError struct {
	PID      int
	Attempts int
	Exited   bool // the player quit while we were waiting
}

func (e *WindowNotFoundError) Error() string {
	if e.Exited {
		return fmt.Sprintf("player (pid %d) exited before showing a window", e.PID)
	}
	return fmt.Sprintf("cannot find a visible window for player pid %d after %d attempts", e.PID, e.Attempts)
}

// FindWindowCommand lists visible top-level windows owned by pid.
func FindWindowCommand(pid int) string {
	return fmt.Sprintf("xdotool search --pid %d --onlyvisible", pid)
}

// ResolveWindow polls the window finder until it reports a handle. The first
// try happens immediately; later tries are spaced by the orchestrator delay
// on a timer, so a cancelled ctx stops the search between attempts.
func (o *Orchestrator) ResolveWindow(ctx context.Context, proc *Process) (media.WindowHandle, error) {
	command := FindWindowCommand(proc.PID)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; attempt <= o.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-proc.Done():
			return "", &WindowNotFoundError{PID: proc.PID, Attempts: attempt - 1, Exited: true}
		case <-timer.C:
		}

		out, err := o.runner.Run(ctx, command)
		if handle := firstLine(out); handle != "" {
			o.logger.Info("player window found", "pid", proc.PID, "window", handle, "attempt", attempt)
			return media.WindowHandle(handle), nil
		}
		// xdotool exits 1 when nothing matches yet.
		if err != nil && !shell.IsExit(err, 1) {
			o.logger.Warn("window search failed", "pid", proc.PID, "attempt", attempt, "error", err)
		}

		timer.Reset(o.delay)
	}

	return "", &WindowNotFoundError{PID: proc.PID, Attempts: o.attempts}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
