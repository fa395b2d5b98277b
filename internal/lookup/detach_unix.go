//go:build !windows

package lookup

import (
	"os/exec"
	"syscall"
)

// setupDetached puts the viewer in a new session so closing the terminal
// does not take the browser with it.
func setupDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
