package cli

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/subherald/internal/config"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the feed on a fixed interval until interrupted",
	RunE:  watchAction,
}

func watchAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg.Debug)
	coord, _, err := buildCoordinator(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("bot service started",
		"interval", cfg.Poll.Interval.Duration.String(),
		"subreddit", cfg.Reddit.Subreddit,
		"domain", cfg.Feed.Domain)

	// Check immediately, then on every tick. Cycles never overlap: a tick
	// that fires while a cycle is still running is simply the next one taken
	// after it finishes.
	if err := coord.RunCycle(ctx); err != nil {
		log.Error("cycle failed", "err", err)
	}

	ticker := time.NewTicker(cfg.Poll.Interval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := coord.RunCycle(ctx); err != nil {
				log.Error("cycle failed", "err", err)
			}
		}
	}
}
