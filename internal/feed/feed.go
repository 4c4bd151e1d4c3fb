// Package feed retrieves and parses the monitored blog feed.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	fetchTimeout = 30 * time.Second
	maxRetries   = 3
)

// Item is one feed entry, in the order the feed supplied it.
type Item struct {
	Title       string
	Link        string
	PublishedAt time.Time // zero when the feed omits a usable timestamp
}

// Fetcher retrieves one RSS/Atom feed. Each Fetch is a fresh snapshot.
type Fetcher struct {
	url       string
	userAgent string
	client    *http.Client
}

// New creates a fetcher for the given feed URL.
func New(feedURL, userAgent string) (*Fetcher, error) {
	if strings.TrimSpace(feedURL) == "" {
		return nil, errors.New("feed: URL is required")
	}
	return &Fetcher{
		url:       feedURL,
		userAgent: userAgent,
		client: &http.Client{
			Timeout:   fetchTimeout,
			Transport: &uaTransport{userAgent: userAgent, base: http.DefaultTransport},
		},
	}, nil
}

// URL returns the feed URL this fetcher polls.
func (f *Fetcher) URL() string {
	return f.url
}

// Fetch downloads and parses the feed, preserving feed order. Entries
// without a link are dropped. Transient failures are retried with backoff;
// a final error means the whole cycle should be treated as a no-op.
func (f *Fetcher) Fetch(ctx context.Context) ([]Item, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		items, err := f.fetchOnce(ctx)
		if err == nil {
			return items, nil
		}
		if !isRetryableError(err) {
			return nil, err
		}
		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second // 1s, 2s, 4s
			sleepFunc(backoff)
		}
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOnce(ctx context.Context) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	fp.Client = f.client
	parsed, err := fp.ParseURLWithContext(f.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.url, err)
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it.Link == "" {
			continue
		}
		items = append(items, Item{
			Title:       strings.TrimSpace(it.Title),
			Link:        it.Link,
			PublishedAt: itemPublishedTime(it),
		})
	}
	return items, nil
}

func itemPublishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// uaTransport injects a User-Agent header into every request.
type uaTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *uaTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// sleepFunc is the function used for retry backoff delays.
// It defaults to time.Sleep but can be overridden in tests.
var sleepFunc = time.Sleep

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "timeout") || strings.Contains(s, "Timeout") {
		return true
	}
	if strings.Contains(s, "connection refused") || strings.Contains(s, "no such host") {
		return true
	}
	// HTTP 5xx errors (server-side, worth retrying)
	if strings.Contains(s, "500") ||
		strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "504") {
		return true
	}
	return false
}
