package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/subherald/internal/config"
	"github.com/ppiankov/subherald/internal/feed"
	"github.com/ppiankov/subherald/internal/reddit"
	"github.com/spf13/cobra"
)

const doctorTimeout = 30 * time.Second

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check config, feed reachability, and Reddit credentials",
	RunE:  doctorAction,
}

func doctorAction(cmd *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config.yaml (r/%s, %s every %s)",
		cfg.Reddit.Subreddit, cfg.Feed.Domain, cfg.Poll.Interval.Duration)

	ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
	defer cancel()

	// Feed
	fetcher, err := feed.New(cfg.FeedURL(), cfg.Reddit.UserAgent)
	if err != nil {
		printCheck(false, "feed: %v", err)
		ok = false
	} else if items, err := fetcher.Fetch(ctx); err != nil {
		printCheck(false, "feed %s: %v", cfg.FeedURL(), err)
		ok = false
	} else {
		printCheck(true, "feed %s (%d entries)", cfg.FeedURL(), len(items))
	}

	// Reddit credentials
	client, err := reddit.New(reddit.Credentials{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		RefreshToken: cfg.Reddit.RefreshToken,
		UserAgent:    cfg.Reddit.UserAgent,
	}, cfg.Reddit.Subreddit)
	if err != nil {
		printCheck(false, "reddit credentials: %v", err)
		ok = false
	} else if user, err := client.Me(ctx); err != nil {
		printCheck(false, "reddit auth: %v", err)
		ok = false
	} else {
		printCheck(true, "reddit auth (u/%s)", user)
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}
