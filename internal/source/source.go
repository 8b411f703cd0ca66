// Package source fetches remote syndication feeds and normalizes them into
// the shape the ingestor persists.
package source

//go:generate mockgen -source=source.go -destination=mock_source.go -package=source

import (
	"context"
	"time"
)

// Entry is one normalized feed item. Link may be empty; callers must drop
// such entries before persisting.
type Entry struct {
	Title       string
	Link        string
	Description *string
	PublishedAt *time.Time
}

// Parsed is the result of one successful fetch.
type Parsed struct {
	Title   string
	Entries []Entry
}

// Source fetches a single feed. A failed fetch yields no partial result.
type Source interface {
	Fetch(ctx context.Context, url string) (*Parsed, error)
}
