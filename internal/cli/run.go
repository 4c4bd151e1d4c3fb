package cli

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/subherald/internal/bot"
	"github.com/ppiankov/subherald/internal/config"
	"github.com/ppiankov/subherald/internal/dedup"
	"github.com/ppiankov/subherald/internal/feed"
	"github.com/ppiankov/subherald/internal/reddit"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single poll-and-post cycle",
	RunE:  runAction,
}

func runAction(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	coord, _, err := buildCoordinator(cfg, newLogger(cfg.Debug))
	if err != nil {
		return err
	}
	return coord.RunCycle(cmd.Context())
}

// buildCoordinator wires the fetcher, oracle, and publisher from config.
// The Reddit client is returned as well so callers can run auth checks.
func buildCoordinator(cfg *config.Config, log *slog.Logger) (*bot.Coordinator, *reddit.Client, error) {
	fetcher, err := feed.New(cfg.FeedURL(), cfg.Reddit.UserAgent)
	if err != nil {
		return nil, nil, fmt.Errorf("create feed fetcher: %w", err)
	}

	client, err := reddit.New(reddit.Credentials{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		RefreshToken: cfg.Reddit.RefreshToken,
		UserAgent:    cfg.Reddit.UserAgent,
	}, cfg.Reddit.Subreddit)
	if err != nil {
		return nil, nil, fmt.Errorf("create reddit client: %w", err)
	}

	oracle := dedup.New(client, cfg.Feed.Domain, cfg.Poll.RecentLimit)

	var pub bot.Publisher = client
	if cfg.Debug {
		log.Info("debug mode: submissions are dry-run only")
		pub = bot.NewDryRun(log)
	}

	return bot.New(fetcher, oracle, pub, log), client, nil
}
