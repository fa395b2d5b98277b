// Package subtitle polls the player for the subtitle line currently on screen
// and reports each new line once.
package subtitle

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"sublookup/internal/ipc"
	"sublookup/internal/logging"
	"sublookup/internal/media"
)

// DefaultInterval is how often the player is asked for its subtitle.
const DefaultInterval = 500 * time.Millisecond

// EndpointSource yields the control endpoint once it is known.
type EndpointSource interface {
	Resolve(ctx context.Context) (media.Endpoint, bool)
}

// Poller reads the sub-text property on every tick. All tick work, including
// endpoint resolution, happens on the goroutine calling Tick or Run, so
// notifications come out in tick order.
type Poller struct {
	source   EndpointSource
	querier  ipc.Querier
	interval time.Duration
	logger   *slog.Logger

	failing bool // last query failed; keeps repeated failures at debug level

	mu       sync.Mutex
	snapshot media.Snapshot
}

func NewPoller(source EndpointSource, querier ipc.Querier, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		querier:  querier,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "poller"),
	}
}

// Snapshot returns the last subtitle read.
func (p *Poller) Snapshot() media.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}

// Tick performs one poll. changed is true when a subtitle different from the
// previous one was read; text is then the new line. Every failure is
// absorbed here so the next tick runs normally.
func (p *Poller) Tick(ctx context.Context) (text string, changed bool) {
	endpoint, ok := p.source.Resolve(ctx)
	if !ok {
		return "", false
	}

	raw, err := p.querier.GetProperty(ctx, endpoint, ipc.SubTextProperty)
	if err != nil {
		p.logFailure("subtitle query failed", err)
		return "", false
	}
	if p.failing {
		p.logger.Info("subtitle query recovered", "endpoint", endpoint)
		p.failing = false
	}

	data, ok, err := ipc.ParseReply(raw)
	if err != nil {
		p.logger.Debug("ignoring reply", "error", err)
		return "", false
	}
	// An empty line between subtitles keeps the previous one on screen.
	if !ok || data == "" {
		return "", false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.snapshot.Observed && p.snapshot.Text == data {
		return "", false
	}
	p.snapshot = media.Snapshot{Text: data, Observed: true}
	return data, true
}

// Run ticks every interval until ctx is done, calling notify for each new
// subtitle. A slow tick delays the next one instead of overlapping it.
func (p *Poller) Run(ctx context.Context, notify func(string)) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if text, changed := p.Tick(ctx); changed {
			notify(text)
		}
	}
}

func (p *Poller) logFailure(msg string, err error) {
	if p.failing {
		p.logger.Debug(msg, "error", err)
		return
	}
	p.failing = true
	p.logger.Warn(msg, "error", err)
}
