package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"sublookup/internal/config"
	"sublookup/internal/player"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the external programs sublookup drives are installed",
	Args:  cobra.NoArgs,
	RunE:  checkRun,
}

// requirement is an external binary a session shells out to.
type requirement struct {
	Name     string
	Command  string
	Purpose  string
	Optional bool
}

func requirements(c *config.Config) []requirement {
	reqs := []requirement{
		{Name: "Player", Command: c.Player, Purpose: "plays the video"},
		{Name: "Viewer", Command: c.Viewer, Purpose: "opens dictionary lookups"},
		{Name: "xdotool", Command: "xdotool", Purpose: "finds and raises the player window"},
		{Name: "pstree", Command: "pstree", Purpose: "finds the mpv IPC socket"},
	}
	reqs = append(reqs, requirement{
		Name:     "socat",
		Command:  "socat",
		Purpose:  "queries mpv (transport = socat)",
		Optional: c.Transport != "socat",
	})
	return reqs
}

func checkRun(cmd *cobra.Command, args []string) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Dependency", "Command", "Status", "Used for"})

	missing := 0
	for _, req := range requirements(cfg) {
		status := "ok"
		if !player.Available(req.Command) {
			switch {
			case req.Optional:
				status = "missing (optional)"
			default:
				status = "MISSING"
				missing++
			}
		}
		t.AppendRow(table.Row{req.Name, req.Command, status, req.Purpose})
	}
	t.Render()

	if missing > 0 {
		return fmt.Errorf("%d required program(s) not found in PATH", missing)
	}
	return nil
}
