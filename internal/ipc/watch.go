package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"sublookup/internal/media"
)

// WatchEndpoint calls onGone once if the endpoint's socket file is removed
// or renamed, then returns. It returns nil when ctx ends first, and does
// nothing for endpoints that are not filesystem paths.
func WatchEndpoint(ctx context.Context, endpoint media.Endpoint, onGone func(), logger *slog.Logger) error {
	if !endpoint.IsUnix() {
		return nil
	}
	path := filepath.Clean(endpoint.String())

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	// The socket may have vanished before the watch was in place.
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		onGone()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				if logger != nil {
					logger.Warn("ipc endpoint disappeared", "endpoint", path, "op", ev.Op.String())
				}
				onGone()
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if logger != nil {
				logger.Warn("endpoint watcher error", "error", err)
			}
		}
	}
}
