package bot

import (
	"context"
	"log/slog"

	"github.com/ppiankov/subherald/internal/reddit"
)

// DryRunPublisher logs would-be posts instead of creating them. Debug mode
// swaps it in so the whole dedup cascade can be validated against the live
// destination with zero side effects.
type DryRunPublisher struct {
	log *slog.Logger
}

// NewDryRun creates a publisher that only logs.
func NewDryRun(log *slog.Logger) *DryRunPublisher {
	if log == nil {
		log = slog.Default()
	}
	return &DryRunPublisher{log: log}
}

func (d *DryRunPublisher) Submit(_ context.Context, title, link string) (reddit.Submission, error) {
	d.log.Info("dry run: would submit", "title", title, "url", link)
	return reddit.Submission{Name: "t3_dryrun", Title: title, URL: link}, nil
}

func (d *DryRunPublisher) Distinguish(_ context.Context, fullname string) error {
	d.log.Info("dry run: would distinguish", "fullname", fullname)
	return nil
}
