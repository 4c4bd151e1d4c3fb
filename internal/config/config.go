package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile  = "config.yaml"
	DefaultInterval    = 15 * time.Minute
	DefaultRecentLimit = 100

	defaultClientIDEnv     = "REDDIT_CLIENT_ID"
	defaultClientSecretEnv = "REDDIT_CLIENT_SECRET"
	defaultRefreshTokenEnv = "REDDIT_REFRESH_TOKEN"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "15m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Feed   FeedConfig   `yaml:"feed"`
	Reddit RedditConfig `yaml:"reddit"`
	Poll   PollConfig   `yaml:"poll"`
	Debug  bool         `yaml:"debug"`
}

type FeedConfig struct {
	// Domain is the monitored site, e.g. "example.com". Posts whose links
	// belong to it are the ones the bot announces and deduplicates against.
	Domain string `yaml:"domain"`

	// URL overrides the feed location. Empty means https://{domain}/blog/rss.
	URL string `yaml:"url"`
}

type RedditConfig struct {
	Subreddit       string `yaml:"subreddit"`
	UserAgent       string `yaml:"user_agent"`
	ClientIDEnv     string `yaml:"client_id_env"`
	ClientSecretEnv string `yaml:"client_secret_env"`
	RefreshTokenEnv string `yaml:"refresh_token_env"`

	// Resolved from env vars at load time.
	ClientID     string `yaml:"-"`
	ClientSecret string `yaml:"-"`
	RefreshToken string `yaml:"-"`
}

type PollConfig struct {
	Interval    Duration `yaml:"interval"`
	RecentLimit int      `yaml:"recent_limit"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// FeedURL returns the configured feed URL, falling back to the conventional
// blog feed path on the monitored domain.
func (c *Config) FeedURL() string {
	if c.Feed.URL != "" {
		return c.Feed.URL
	}
	return fmt.Sprintf("https://%s/blog/rss", c.Feed.Domain)
}

func applyDefaults(cfg *Config) {
	if cfg.Poll.Interval.Duration == 0 {
		cfg.Poll.Interval.Duration = DefaultInterval
	}
	if cfg.Poll.RecentLimit == 0 {
		cfg.Poll.RecentLimit = DefaultRecentLimit
	}
	if cfg.Reddit.ClientIDEnv == "" {
		cfg.Reddit.ClientIDEnv = defaultClientIDEnv
	}
	if cfg.Reddit.ClientSecretEnv == "" {
		cfg.Reddit.ClientSecretEnv = defaultClientSecretEnv
	}
	if cfg.Reddit.RefreshTokenEnv == "" {
		cfg.Reddit.RefreshTokenEnv = defaultRefreshTokenEnv
	}
	if cfg.Reddit.UserAgent == "" && cfg.Feed.Domain != "" {
		cfg.Reddit.UserAgent = fmt.Sprintf("%sBot/1.0", cfg.Feed.Domain)
	}
}

func resolveEnv(cfg *Config) {
	cfg.Reddit.ClientID = os.Getenv(cfg.Reddit.ClientIDEnv)
	cfg.Reddit.ClientSecret = os.Getenv(cfg.Reddit.ClientSecretEnv)
	cfg.Reddit.RefreshToken = os.Getenv(cfg.Reddit.RefreshTokenEnv)
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Feed.Domain) == "" {
		return errors.New("feed.domain is required")
	}
	if strings.Contains(cfg.Feed.Domain, "/") {
		return fmt.Errorf("feed.domain: %q must be a bare host, not a URL", cfg.Feed.Domain)
	}
	if strings.TrimSpace(cfg.Reddit.Subreddit) == "" {
		return errors.New("reddit.subreddit is required")
	}
	if cfg.Poll.Interval.Duration <= 0 {
		return fmt.Errorf("poll.interval: %v must be positive", cfg.Poll.Interval.Duration)
	}
	if cfg.Poll.RecentLimit <= 0 {
		return fmt.Errorf("poll.recent_limit: %d must be positive", cfg.Poll.RecentLimit)
	}
	return nil
}
