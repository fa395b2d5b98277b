// Package player launches the external media player and locates its window.
// The orchestrator owns the player process: nothing else may terminate it.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"sublookup/internal/logging"
	"sublookup/internal/media"
	"sublookup/internal/shell"
)

// stopGrace is how long Stop waits after SIGTERM before killing the player.
const stopGrace = 3 * time.Second

// Process is a launched player.
type Process struct {
	PID     int
	Program string

	cmd  *exec.Cmd
	done chan struct{}

	mu    sync.Mutex
	state media.ProcessState
	err   error
}

// State returns the current lifecycle state.
func (p *Process) State() media.ProcessState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Done is closed once the player has exited.
func (p *Process) Done() <-chan struct{} { return p.done }

// Err returns the wait error after exit, if any.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Process) setExited(err error) {
	p.mu.Lock()
	p.state = media.Exited
	p.err = err
	p.mu.Unlock()
	close(p.done)
}

// Orchestrator starts players and resolves their windows.
type Orchestrator struct {
	runner   shell.Runner
	attempts int
	delay    time.Duration
	logger   *slog.Logger
}

// NewOrchestrator returns an orchestrator whose window search makes up to
// attempts tries, delay apart.
func NewOrchestrator(runner shell.Runner, attempts int, delay time.Duration, logger *slog.Logger) *Orchestrator {
	if attempts <= 0 {
		attempts = 10
	}
	return &Orchestrator{
		runner:   runner,
		attempts: attempts,
		delay:    delay,
		logger:   logging.NewComponentLogger(logger, "player"),
	}
}

// Launch starts program with no arguments and returns without waiting for
// its window. The player's own output is discarded so it cannot draw over
// the terminal presenter.
func (o *Orchestrator) Launch(ctx context.Context, program string) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(program)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", program, err)
	}

	proc := &Process{
		PID:     cmd.Process.Pid,
		Program: program,
		cmd:     cmd,
		done:    make(chan struct{}),
		state:   media.Running,
	}
	o.logger.Info("player started", "program", program, "pid", proc.PID)

	go func() {
		err := cmd.Wait()
		o.logger.Info("player exited", "pid", proc.PID, "error", err)
		proc.setExited(err)
	}()

	return proc, nil
}

// Stop asks the player to quit and kills it if it has not exited within a
// short grace period. Stopping an exited player is a no-op.
func (o *Orchestrator) Stop(proc *Process) error {
	if proc == nil || proc.State() != media.Running {
		return nil
	}

	if err := proc.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		o.logger.Warn("sending SIGTERM failed", "pid", proc.PID, "error", err)
	}

	select {
	case <-proc.Done():
		return nil
	case <-time.After(stopGrace):
	}

	if err := proc.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing %s (pid %d): %w", proc.Program, proc.PID, err)
	}
	<-proc.Done()
	return nil
}

// Available checks if a binary exists in PATH.
func Available(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}
