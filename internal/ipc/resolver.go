package ipc

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"sublookup/internal/logging"
	"sublookup/internal/media"
	"sublookup/internal/shell"
)

// DefaultFlag is the mpv option carrying the control socket path.
const DefaultFlag = "input-ipc-server"

// Resolver discovers the endpoint for one player process and caches it.
// Once resolved the endpoint never changes, even if the socket later goes
// away; WatchEndpoint exists to report that case.
type Resolver struct {
	runner  shell.Runner
	pid     int
	pattern *regexp.Regexp
	logger  *slog.Logger

	mu       sync.Mutex
	resolved bool
	endpoint media.Endpoint
}

// NewResolver returns a resolver for the process tree rooted at pid, looking
// for flag=<value> among the descendants' arguments.
func NewResolver(runner shell.Runner, pid int, flag string, logger *slog.Logger) *Resolver {
	if flag == "" {
		flag = DefaultFlag
	}
	return &Resolver{
		runner:  runner,
		pid:     pid,
		pattern: regexp.MustCompile(regexp.QuoteMeta(flag) + `=(\S+)`),
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// TreeCommand prints every descendant of pid with its full argument list.
func TreeCommand(pid int) string {
	return fmt.Sprintf("pstree -a -T %d", pid)
}

// Resolve returns the cached endpoint, or inspects the process tree if none is
// known yet. ok is false while the child has not started or carries no flag;
// that is expected and not an error.
func (r *Resolver) Resolve(ctx context.Context) (media.Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.resolved {
		return r.endpoint, true
	}

	out, err := r.runner.Run(ctx, TreeCommand(r.pid))
	if err != nil {
		r.logger.Debug("process tree lookup failed", "pid", r.pid, "error", err)
	}

	value := r.extract(out)
	if value == "" {
		return "", false
	}

	r.endpoint = media.Endpoint(value)
	r.resolved = true
	r.logger.Info("ipc endpoint resolved", "pid", r.pid, "endpoint", value)
	return r.endpoint, true
}

// Endpoint returns the cached endpoint without doing any lookup.
func (r *Resolver) Endpoint() (media.Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoint, r.resolved
}

func (r *Resolver) extract(tree string) string {
	m := r.pattern.FindStringSubmatch(tree)
	if m == nil {
		return ""
	}
	return m[1]
}
