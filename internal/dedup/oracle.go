// Package dedup decides whether a feed item has already been posted.
//
// The decision cascades through progressively more expensive sources of
// truth: an in-memory session set, the account's recent submissions, and a
// full-history subreddit search. The remote tiers are what make the bot safe
// across restarts without any local persistence; the session set only saves
// repeat queries within one process run.
package dedup

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/subherald/internal/reddit"
)

// Destination lists posts already present on Reddit. Both methods reflect
// live state at call time; Recent is immune to search-index lag, SearchDomain
// covers history older than the recent listing window.
type Destination interface {
	Recent(ctx context.Context, limit int) ([]reddit.Submission, error)
	SearchDomain(ctx context.Context, domain string) ([]reddit.Submission, error)
}

// Source tags which tier of the cascade detected a duplicate.
type Source int

const (
	SourceNone Source = iota
	SourceSession
	SourceRecent
	SourceSearch
)

func (s Source) String() string {
	switch s {
	case SourceSession:
		return "session"
	case SourceRecent:
		return "recent"
	case SourceSearch:
		return "search"
	default:
		return "none"
	}
}

// Verdict is the outcome of one duplicate check.
type Verdict struct {
	Duplicate bool
	Source    Source
}

// Oracle answers "already posted?" for candidate links.
type Oracle struct {
	dest        Destination
	domain      string
	recentLimit int
	session     map[string]struct{}
}

// New creates an oracle with an empty session set. The set grows for the
// process lifetime and is never persisted.
func New(dest Destination, domain string, recentLimit int) *Oracle {
	return &Oracle{
		dest:        dest,
		domain:      domain,
		recentLimit: recentLimit,
		session:     make(map[string]struct{}),
	}
}

// Check runs the cascade for one link, short-circuiting on the first hit.
// It never mutates the session set; an error means a remote tier failed and
// the caller must skip the item rather than treat it as novel.
func (o *Oracle) Check(ctx context.Context, link string) (Verdict, error) {
	key := canonical(link)

	if _, ok := o.session[key]; ok {
		return Verdict{Duplicate: true, Source: SourceSession}, nil
	}

	recent, err := o.dest.Recent(ctx, o.recentLimit)
	if err != nil {
		return Verdict{}, fmt.Errorf("recent check for %s: %w", link, err)
	}
	for _, s := range recent {
		if canonical(s.URL) == key {
			return Verdict{Duplicate: true, Source: SourceRecent}, nil
		}
	}

	found, err := o.dest.SearchDomain(ctx, o.domain)
	if err != nil {
		return Verdict{}, fmt.Errorf("deep search for %s: %w", link, err)
	}
	for _, s := range found {
		if canonical(s.URL) == key {
			return Verdict{Duplicate: true, Source: SourceSearch}, nil
		}
	}

	return Verdict{}, nil
}

// Record marks a link as handled for the rest of this run. Called after a
// successful submit, and after a remote tier confirms a duplicate so the
// same expensive queries are not repeated this session.
func (o *Oracle) Record(link string) {
	o.session[canonical(link)] = struct{}{}
}

// canonical compares links the way the destination stores them: exact string
// match except for trailing slashes. No other normalization; a feed link that
// differs by tracking parameters or protocol is a different link.
func canonical(link string) string {
	return strings.TrimRight(link, "/")
}
