// Package lookup turns a selected piece of subtitle text into a dictionary
// lookup opened in an external viewer.
package lookup

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sublookup/internal/logging"
)

// Placeholder marks where the selected text goes in a URL template.
const Placeholder = "{query}"

var (
	ErrEmptySelection = errors.New("empty selection")
	ErrThrottled      = errors.New("lookup dropped: selections arriving too fast")
)

// BuildURL substitutes text into template. The text is inserted as is;
// escaping is up to the viewer.
func BuildURL(template, text string) string {
	return strings.ReplaceAll(template, Placeholder, text)
}

// Launcher starts program without waiting for it.
type Launcher func(program string, args ...string) error

// Dispatcher opens lookups. It never waits on or hears back from the viewer.
type Dispatcher struct {
	viewer   string
	template string
	launch   Launcher

	every rate.Limit
	burst int

	mu      sync.Mutex
	last    string
	limiter *rate.Limiter

	logger *slog.Logger
}

// NewDispatcher returns a dispatcher opening template URLs with viewer.
// Repeats of the same selection beyond two are limited to one every 250ms;
// a different selection is never held back.
func NewDispatcher(viewer, template string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		viewer:   viewer,
		template: template,
		launch:   StartDetached,
		every:    rate.Every(250 * time.Millisecond),
		burst:    2,
		logger:   logging.NewComponentLogger(logger, "lookup"),
	}
}

// Dispatch launches a lookup for text. Only an empty selection or a rapid
// repeat of the previous one is reported; a viewer that fails to start is
// logged and otherwise ignored. The text reaches the URL unchanged.
func (d *Dispatcher) Dispatch(text string) error {
	key := strings.TrimSpace(text)
	if key == "" {
		return ErrEmptySelection
	}
	if !d.allow(key) {
		return ErrThrottled
	}

	url := BuildURL(d.template, text)
	if err := d.launch(d.viewer, url); err != nil {
		d.logger.Warn("viewer launch failed", "viewer", d.viewer, "url", url, "error", err)
		return nil
	}
	d.logger.Debug("lookup dispatched", "viewer", d.viewer, "url", url)
	return nil
}

// allow applies the limiter to repeats of key only. A new key starts a
// fresh budget.
func (d *Dispatcher) allow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.limiter == nil || key != d.last {
		d.last = key
		d.limiter = rate.NewLimiter(d.every, d.burst)
	}
	return d.limiter.Allow()
}
