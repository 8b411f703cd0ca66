package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-reader/internal/model"
	"go-reader/internal/source"
)

// SyncService reconciles remote feed entries with stored articles.
type SyncService struct {
	db       *gorm.DB
	source   source.Source
	workers  int
	inflight singleflight.Group
}

// FeedResult is the outcome of syncing one feed within a batch.
type FeedResult struct {
	FeedID uint   `json:"feedId"`
	Added  int    `json:"addedCount"`
	Error  string `json:"error,omitempty"`
}

func (r FeedResult) Failed() bool {
	return r.Error != ""
}

// BatchResult aggregates a SyncAll run. TotalAdded only counts feeds that succeeded.
type BatchResult struct {
	TotalAdded int          `json:"addedCount"`
	Feeds      []FeedResult `json:"feeds"`
}

func NewSyncService(db *gorm.DB, src source.Source, workers int) *SyncService {
	if workers < 1 {
		workers = 1
	}
	return &SyncService{
		db:      db,
		source:  src,
		workers: workers,
	}
}

// SyncFeed fetches feed and inserts entries whose link is not stored yet.
// Known links are skipped and counted. The feed's updated_at is advanced on
// every completed attempt, even when nothing was added.
func (s *SyncService) SyncFeed(ctx context.Context, feed *model.Feed) (int, error) {
	start := time.Now()
	defer func() {
		feedSyncDuration.Observe(time.Since(start).Seconds())
	}()

	logger := log.WithFields(log.Fields{
		"feed_id": feed.ID,
		"url":     feed.URL,
	})

	parsed, err := s.source.Fetch(ctx, feed.URL)
	if err != nil {
		feedSyncs.WithLabelValues("unreachable").Inc()
		return 0, fmt.Errorf("%w: %w", ErrFeedUnreachable, err)
	}

	entries := lo.Filter(parsed.Entries, func(e source.Entry, _ int) bool {
		return strings.TrimSpace(e.Link) != ""
	})

	db := s.db.WithContext(ctx)
	var added, skipped int
	for _, entry := range entries {
		article := model.Article{
			FeedID:      feed.ID,
			Title:       entry.Title,
			Link:        strings.TrimSpace(entry.Link),
			Description: entry.Description,
		}
		// pub_date is stored as text, so ordering only holds in a single zone
		if entry.PublishedAt != nil {
			article.PubDate = lo.ToPtr(entry.PublishedAt.UTC())
		}

		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "link"}},
			DoNothing: true,
		}).Create(&article)
		if res.Error != nil {
			feedSyncs.WithLabelValues("error").Inc()
			return added, fmt.Errorf("insert article %s: %w", article.Link, res.Error)
		}
		if res.RowsAffected > 0 {
			added++
		} else {
			skipped++
		}
	}

	now := s.db.NowFunc()
	if err := db.Model(&model.Feed{}).Where("id = ?", feed.ID).UpdateColumn("updated_at", now).Error; err != nil {
		feedSyncs.WithLabelValues("error").Inc()
		return added, fmt.Errorf("touch feed %d: %w", feed.ID, err)
	}
	feed.UpdatedAt = now

	articlesAdded.Add(float64(added))
	articlesSkipped.Add(float64(skipped))
	feedSyncs.WithLabelValues("ok").Inc()
	logger.WithFields(log.Fields{
		"entries": len(entries),
		"added":   added,
		"skipped": skipped,
	}).Info("Feed synced")

	return added, nil
}

// SyncOne syncs a single feed by id. Fetch failures are returned to the caller.
func (s *SyncService) SyncOne(ctx context.Context, feedID uint) (int, error) {
	var feed model.Feed
	if err := s.db.WithContext(ctx).First(&feed, feedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("feed %d: %w", feedID, ErrNotFound)
		}
		return 0, err
	}
	return s.syncExclusive(ctx, feed)
}

// SyncAll syncs every registered feed with at most s.workers in flight.
// A failing feed is logged and recorded in its FeedResult; it never stops
// the remaining feeds.
func (s *SyncService) SyncAll(ctx context.Context) (*BatchResult, error) {
	var feeds []model.Feed
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&feeds).Error; err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}

	results := make([]FeedResult, len(feeds))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, feed := range feeds {
		g.Go(func() error {
			res := FeedResult{FeedID: feed.ID}
			added, err := s.syncExclusive(ctx, feed)
			if err != nil {
				res.Error = err.Error()
				log.WithFields(log.Fields{
					"feed_id": feed.ID,
					"url":     feed.URL,
				}).WithError(err).Warn("Feed sync failed, skipping")
			} else {
				res.Added = added
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	batch := &BatchResult{
		TotalAdded: lo.SumBy(results, func(r FeedResult) int { return r.Added }),
		Feeds:      results,
	}

	failed := lo.CountBy(results, FeedResult.Failed)
	log.WithFields(log.Fields{
		"feeds":  len(feeds),
		"failed": failed,
		"added":  batch.TotalAdded,
	}).Info("Batch sync finished")

	return batch, nil
}

// syncExclusive coalesces overlapping syncs of the same feed; concurrent
// callers share one fetch and its result. The shared sync is detached from
// any single caller's cancellation and stays bounded by the fetch timeout.
// A caller whose ctx ends stops waiting without affecting the others.
func (s *SyncService) syncExclusive(ctx context.Context, feed model.Feed) (int, error) {
	key := strconv.FormatUint(uint64(feed.ID), 10)
	shared := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (any, error) {
		return s.SyncFeed(shared, &feed)
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}
