// Package bot drives one polling cycle: fetch the feed, walk candidates
// oldest-first, and post every item the duplicate oracle has not seen.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/subherald/internal/dedup"
	"github.com/ppiankov/subherald/internal/feed"
	"github.com/ppiankov/subherald/internal/reddit"
)

// Fetcher produces a fresh snapshot of feed candidates in feed order.
type Fetcher interface {
	Fetch(ctx context.Context) ([]feed.Item, error)
}

// Oracle decides whether a link was already posted and records handled links.
type Oracle interface {
	Check(ctx context.Context, link string) (dedup.Verdict, error)
	Record(link string)
}

// Publisher creates the post and applies the moderator badge.
type Publisher interface {
	Submit(ctx context.Context, title, link string) (reddit.Submission, error)
	Distinguish(ctx context.Context, fullname string) error
}

// Coordinator runs poll cycles. One cycle completes before the next starts;
// nothing here is safe for concurrent use and nothing needs to be.
type Coordinator struct {
	fetcher Fetcher
	oracle  Oracle
	pub     Publisher
	log     *slog.Logger
}

// New wires a coordinator. All collaborators are required.
func New(fetcher Fetcher, oracle Oracle, pub Publisher, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{fetcher: fetcher, oracle: oracle, pub: pub, log: log}
}

// RunCycle executes one fetch-check-publish pass. A fetch failure aborts the
// cycle and is returned; every per-item failure is logged and skips only that
// item, so one broken candidate cannot starve the rest.
func (c *Coordinator) RunCycle(ctx context.Context) error {
	c.log.Info("checking feed")

	items, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	if len(items) == 0 {
		c.log.Info("feed is empty")
		return nil
	}

	// Feeds list newest first. Walk backwards so that a backlog of items is
	// posted in the order it was published.
	for i := len(items) - 1; i >= 0; i-- {
		c.handleItem(ctx, items[i])
	}
	return nil
}

func (c *Coordinator) handleItem(ctx context.Context, item feed.Item) {
	log := c.log.With("url", item.Link, "title", item.Title)

	verdict, err := c.oracle.Check(ctx, item.Link)
	if err != nil {
		// Never treat a failed check as "not a duplicate": that risks a
		// repost. Skip and let the next cycle retry.
		log.Error("duplicate check failed, skipping item", "err", err)
		return
	}
	if verdict.Duplicate {
		log.Debug("skipping duplicate", "source", verdict.Source.String())
		if verdict.Source != dedup.SourceSession {
			c.oracle.Record(item.Link)
		}
		return
	}

	log.Info("new post found")

	sub, err := c.pub.Submit(ctx, item.Title, item.Link)
	if err != nil {
		// Not recorded, so the next cycle retries this item.
		log.Error("submit failed", "stage", "submit", "err", err)
		return
	}
	c.oracle.Record(item.Link)
	log.Info("posted", "fullname", sub.Name, "permalink", sub.Permalink)

	if err := c.pub.Distinguish(ctx, sub.Name); err != nil {
		// The post exists; only its badge is missing. Never retried.
		log.Warn("could not distinguish post", "stage", "distinguish", "err", err)
		return
	}
	log.Info("distinguished as moderator", "fullname", sub.Name)
}
