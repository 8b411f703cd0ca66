package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	untitledFeed  = "Untitled Feed"
	untitledEntry = "Untitled"
)

// Options configures a Fetcher.
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	HostInterval time.Duration
}

// Fetcher is the gofeed-backed Source.
type Fetcher struct {
	parser  *gofeed.Parser
	policy  *bluemonday.Policy
	limiter *HostLimiter
	timeout time.Duration
}

func NewFetcher(opts Options) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = opts.UserAgent
	parser.Client = &http.Client{Timeout: opts.Timeout}

	var limiter *HostLimiter
	if opts.HostInterval > 0 {
		limiter = NewHostLimiter(opts.HostInterval)
	}

	return &Fetcher{
		parser:  parser,
		policy:  bluemonday.StrictPolicy(),
		limiter: limiter,
		timeout: opts.Timeout,
	}
}

// Fetch downloads and parses url. Timeouts, transport errors, non-2xx
// responses and malformed documents all surface as a single error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Parsed, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, url); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", url, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	parsed := f.normalize(feed)
	log.WithFields(log.Fields{
		"url":     url,
		"entries": len(parsed.Entries),
	}).Debug("Fetched feed")

	return parsed, nil
}

func (f *Fetcher) normalize(feed *gofeed.Feed) *Parsed {
	title := strings.TrimSpace(feed.Title)
	if title == "" {
		title = untitledFeed
	}

	entries := lo.FilterMap(feed.Items, func(item *gofeed.Item, _ int) (Entry, bool) {
		if item == nil {
			return Entry{}, false
		}
		return f.entry(item), true
	})

	return &Parsed{Title: title, Entries: entries}
}

func (f *Fetcher) entry(item *gofeed.Item) Entry {
	e := Entry{
		Title: strings.TrimSpace(item.Title),
		Link:  strings.TrimSpace(item.Link),
	}
	if e.Title == "" {
		e.Title = untitledEntry
	}

	// Plain-text snippet of the description, falling back to the full content.
	for _, raw := range []string{item.Description, item.Content} {
		if text := f.snippet(raw); text != "" {
			e.Description = &text
			break
		}
	}

	switch {
	case item.PublishedParsed != nil:
		t := item.PublishedParsed.UTC()
		e.PublishedAt = &t
	case item.UpdatedParsed != nil:
		t := item.UpdatedParsed.UTC()
		e.PublishedAt = &t
	}

	return e
}

func (f *Fetcher) snippet(raw string) string {
	if raw == "" {
		return ""
	}
	text := f.policy.Sanitize(raw)
	return strings.Join(strings.Fields(text), " ")
}
