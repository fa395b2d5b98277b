package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"sublookup/internal/config"
	"sublookup/internal/ipc"
	"sublookup/internal/logging"
	"sublookup/internal/lookup"
	"sublookup/internal/media"
	"sublookup/internal/player"
	"sublookup/internal/shell"
	"sublookup/internal/subtitle"
	"sublookup/internal/ui"
)

// session holds everything wired together for one player run.
type session struct {
	logger     *slog.Logger
	orch       *player.Orchestrator
	proc       *player.Process
	window     media.WindowHandle
	poller     *subtitle.Poller
	resolved   chan media.Endpoint
	dispatcher *lookup.Dispatcher
	previewer  *lookup.Previewer
}

// sessionRun is the default command: sublookup [player]
func sessionRun(cmd *cobra.Command, args []string) error {
	interactive := term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))

	logger, closeLog, err := newLogger(cfg, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	if !player.Available(cfg.Player) {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := startSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.orch.Stop(s.proc); err != nil {
			logger.Warn("stopping player", "error", err)
		}
	}()

	if interactive {
		return s.runTerminal(ctx)
	}
	return s.runLines(ctx, os.Stdin, cmd.OutOrStdout())
}

// startSession launches the player and waits for its window. A missing
// window ends the session before anything else starts.
func startSession(ctx context.Context, c *config.Config, logger *slog.Logger) (*session, error) {
	runner := shell.New(c.CommandTimeout.Duration, logger)
	orch := player.NewOrchestrator(runner, c.WindowAttempts, c.WindowDelay.Duration, logger)

	proc, err := orch.Launch(ctx, c.Player)
	if err != nil {
		return nil, fmt.Errorf("launching player: %w", err)
	}

	window, err := orch.ResolveWindow(ctx, proc)
	if err != nil {
		_ = orch.Stop(proc)
		return nil, err
	}

	surface := player.X11Surface{Runner: runner}
	if err := surface.Embed(ctx, window); err != nil {
		logger.Warn("could not raise player window", "window", window, "error", err)
	}

	s := &session{
		logger:     logger,
		orch:       orch,
		proc:       proc,
		window:     window,
		resolved:   make(chan media.Endpoint, 1),
		dispatcher: lookup.NewDispatcher(c.Viewer, c.URLTemplate, logger),
		previewer:  lookup.NewPreviewer(nil, c.URLTemplate, c.PreviewSelector, c.PreviewLimit, logger),
	}

	resolver := ipc.NewResolver(runner, proc.PID, c.IPCFlag, logger)
	source := &announcingSource{Resolver: resolver, resolved: s.resolved}
	s.poller = subtitle.NewPoller(source, newQuerier(c, runner), c.PollInterval.Duration, logger)
	return s, nil
}

func newQuerier(c *config.Config, runner shell.Runner) ipc.Querier {
	if strings.EqualFold(c.Transport, "socket") {
		return &ipc.SocketQuerier{Timeout: c.CommandTimeout.Duration}
	}
	return ipc.SocatQuerier{Runner: runner}
}

// announcingSource passes the endpoint on once, the first time it resolves.
type announcingSource struct {
	*ipc.Resolver
	resolved  chan<- media.Endpoint
	announced bool
}

func (a *announcingSource) Resolve(ctx context.Context) (media.Endpoint, bool) {
	ep, ok := a.Resolver.Resolve(ctx)
	if ok && !a.announced {
		a.announced = true
		a.resolved <- ep
	}
	return ep, ok
}

// run starts the poller and the endpoint watcher and blocks until the player
// exits or ctx ends. notify receives each new subtitle; events receives
// endpoint and player state changes.
func (s *session) run(ctx context.Context, notify func(string), events func(tea.Msg)) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.poller.Run(gctx, notify)
	})

	g.Go(func() error {
		var ep media.Endpoint
		select {
		case <-gctx.Done():
			return nil
		case ep = <-s.resolved:
		}
		events(ui.EndpointMsg(ep))
		return ipc.WatchEndpoint(gctx, ep, func() { events(ui.EndpointGoneMsg{}) }, s.logger)
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-s.proc.Done():
			events(ui.PlayerExitedMsg{Err: s.proc.Err()})
			return errPlayerExited
		}
	})

	err := g.Wait()
	if errors.Is(err, errPlayerExited) {
		return nil
	}
	return err
}

var errPlayerExited = errors.New("player exited")

func (s *session) runTerminal(ctx context.Context) error {
	model := ui.New(s.dispatcher, s.previewer, s.window)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.run(loopCtx, func(text string) { program.Send(ui.SubtitleMsg(text)) }, program.Send)
	}()

	_, err := program.Run()
	cancel()
	runErr := <-done

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return runErr
}

func (s *session) runLines(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := ui.NewLines(out, s.dispatcher)

	fmt.Fprintf(os.Stderr, "player window %s\n", s.window)
	go func() {
		if err := lines.ReadSelections(in); err != nil {
			s.logger.Warn("reading selections", "error", err)
		}
	}()

	return s.run(ctx, lines.Show, func(msg tea.Msg) {
		switch msg := msg.(type) {
		case ui.EndpointMsg:
			fmt.Fprintf(os.Stderr, "ipc endpoint %s\n", media.Endpoint(msg))
		case ui.EndpointGoneMsg:
			fmt.Fprintln(os.Stderr, "ipc endpoint disappeared; subtitles will no longer update")
		}
	})
}

// newLogger logs to stderr in line mode and to the log file in terminal
// mode, where stderr belongs to the UI.
func newLogger(c *config.Config, interactive bool) (*slog.Logger, func(), error) {
	if !c.Debug {
		return logging.NewNop(), func() {}, nil
	}
	if !interactive {
		return logging.New(true, os.Stderr), func() {}, nil
	}

	path, err := c.LogPath()
	if err != nil {
		return nil, nil, err
	}
	f, err := logging.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(true, f), func() { f.Close() }, nil
}
