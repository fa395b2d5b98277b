package player

import (
	"context"
	"fmt"

	"sublookup/internal/media"
	"sublookup/internal/shell"
)

// Surface hosts the player's window. Implementations only ever need the
// handle's identity.
type Surface interface {
	Embed(ctx context.Context, handle media.WindowHandle) error
}

// X11Surface brings the player window to the front next to the terminal.
type X11Surface struct {
	Runner shell.Runner
}

func (s X11Surface) Embed(ctx context.Context, handle media.WindowHandle) error {
	if handle == "" {
		return fmt.Errorf("empty window handle")
	}
	if _, err := s.Runner.Run(ctx, "xdotool windowactivate "+shell.Quote(handle.String())); err != nil {
		return fmt.Errorf("activating window %s: %w", handle, err)
	}
	return nil
}
