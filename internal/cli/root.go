// Package cli provides the command-line interface for subherald.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "subherald",
	Short: "Announce new blog posts to a subreddit, exactly once",
	Long:  "subherald polls one RSS feed and cross-posts each new entry to a subreddit as an official link post, deduplicating against Reddit itself so restarts never cause reposts.",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("subherald %s (%s)\n", Version, Commit)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".subherald", "directory containing config.yaml")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
}

// Execute runs the root command.
func Execute() error {
	// Credentials may live in a .env file when running in a container.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

// newLogger builds the process logger. Debug mode lowers the level so the
// per-item cascade decisions become visible.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
