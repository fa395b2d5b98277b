// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sublookup/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagViewer    string
	flagURL       string
	flagInterval  time.Duration
	flagTransport string
	flagPreview   string
	flagLogFile   string
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "sublookup [player]",
	Short: "Look up words from the subtitles of a running video",
	Long: `Sublookup starts a media player (smplayer by default), follows the subtitle
currently on screen through the player's mpv IPC socket, and opens a dictionary
lookup for any word or phrase you select.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              sessionRun,
	SilenceUsage:      true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagViewer, "viewer", "", "Program that opens lookup URLs (default: google-chrome-stable)")
	rootCmd.PersistentFlags().StringVarP(&flagURL, "url", "u", "", "Lookup URL template containing {query}")
	rootCmd.PersistentFlags().DurationVarP(&flagInterval, "interval", "i", 0, "Subtitle poll interval (default: 500ms)")
	rootCmd.PersistentFlags().StringVarP(&flagTransport, "transport", "t", "", "IPC transport: socat | socket")
	rootCmd.PersistentFlags().StringVar(&flagPreview, "preview", "", "CSS selector for inline translation previews")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Debug log destination in terminal mode")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if len(args) > 0 && args[0] != "" {
		cfg.Player = args[0]
	}
	if flagViewer != "" {
		cfg.Viewer = flagViewer
	}
	if flagURL != "" {
		cfg.URLTemplate = flagURL
	}
	if flagInterval != 0 {
		cfg.PollInterval.Duration = flagInterval
	}
	if flagTransport != "" {
		cfg.Transport = flagTransport
	}
	if flagPreview != "" {
		cfg.PreviewSelector = flagPreview
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}
