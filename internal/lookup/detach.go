package lookup

import (
	"fmt"
	"os/exec"
)

// StartDetached starts program in its own session with no stdio attached.
// The child is reaped in the background; its exit status is discarded.
func StartDetached(program string, args ...string) error {
	cmd := exec.Command(program, args...)
	setupDetached(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", program, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
