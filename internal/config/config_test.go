package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestYAML(t *testing.T, dir, content string) {
	t.Helper()
	path := filepath.Join(dir, DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test yaml: %v", err)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEST_CLIENT_ID", "cid")
	t.Setenv("TEST_CLIENT_SECRET", "secret")
	t.Setenv("TEST_REFRESH_TOKEN", "rtok")

	writeTestYAML(t, dir, `
feed:
  domain: example.com
  url: https://example.com/custom.xml
reddit:
  subreddit: example
  user_agent: custombot/2.0
  client_id_env: TEST_CLIENT_ID
  client_secret_env: TEST_CLIENT_SECRET
  refresh_token_env: TEST_REFRESH_TOKEN
poll:
  interval: 5m
  recent_limit: 50
debug: true
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Feed.Domain != "example.com" {
		t.Errorf("domain = %q", cfg.Feed.Domain)
	}
	if cfg.FeedURL() != "https://example.com/custom.xml" {
		t.Errorf("feed url = %q, want override", cfg.FeedURL())
	}
	if cfg.Reddit.Subreddit != "example" {
		t.Errorf("subreddit = %q", cfg.Reddit.Subreddit)
	}
	if cfg.Reddit.UserAgent != "custombot/2.0" {
		t.Errorf("user_agent = %q", cfg.Reddit.UserAgent)
	}
	if cfg.Reddit.ClientID != "cid" || cfg.Reddit.ClientSecret != "secret" || cfg.Reddit.RefreshToken != "rtok" {
		t.Errorf("credentials = %q/%q/%q, want resolved from env",
			cfg.Reddit.ClientID, cfg.Reddit.ClientSecret, cfg.Reddit.RefreshToken)
	}
	if cfg.Poll.Interval.Duration != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", cfg.Poll.Interval.Duration)
	}
	if cfg.Poll.RecentLimit != 50 {
		t.Errorf("recent_limit = %d, want 50", cfg.Poll.RecentLimit)
	}
	if !cfg.Debug {
		t.Error("debug = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeTestYAML(t, dir, `
feed:
  domain: example.com
reddit:
  subreddit: example
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Poll.Interval.Duration != DefaultInterval {
		t.Errorf("interval = %v, want %v", cfg.Poll.Interval.Duration, DefaultInterval)
	}
	if cfg.Poll.RecentLimit != DefaultRecentLimit {
		t.Errorf("recent_limit = %d, want %d", cfg.Poll.RecentLimit, DefaultRecentLimit)
	}
	if cfg.FeedURL() != "https://example.com/blog/rss" {
		t.Errorf("feed url = %q, want derived from domain", cfg.FeedURL())
	}
	if cfg.Reddit.UserAgent != "example.comBot/1.0" {
		t.Errorf("user_agent = %q, want derived from domain", cfg.Reddit.UserAgent)
	}
	if cfg.Reddit.ClientIDEnv != "REDDIT_CLIENT_ID" {
		t.Errorf("client_id_env = %q", cfg.Reddit.ClientIDEnv)
	}
	if cfg.Debug {
		t.Error("debug = true, want false by default")
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing domain",
			yaml:    "reddit:\n  subreddit: example\n",
			wantErr: "feed.domain",
		},
		{
			name:    "domain is a url",
			yaml:    "feed:\n  domain: https://example.com\nreddit:\n  subreddit: example\n",
			wantErr: "bare host",
		},
		{
			name:    "missing subreddit",
			yaml:    "feed:\n  domain: example.com\n",
			wantErr: "reddit.subreddit",
		},
		{
			name:    "negative interval",
			yaml:    "feed:\n  domain: example.com\nreddit:\n  subreddit: example\npoll:\n  interval: -5m\n",
			wantErr: "poll.interval",
		},
		{
			name:    "negative recent limit",
			yaml:    "feed:\n  domain: example.com\nreddit:\n  subreddit: example\npoll:\n  recent_limit: -1\n",
			wantErr: "poll.recent_limit",
		},
		{
			name:    "bad duration",
			yaml:    "feed:\n  domain: example.com\nreddit:\n  subreddit: example\npoll:\n  interval: soon\n",
			wantErr: "parse duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeTestYAML(t, dir, tt.yaml)

			_, err := Load(dir)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config file")
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
