package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-reader/internal/model"
	"go-reader/internal/source"
)

type FeedService struct {
	db     *gorm.DB
	source source.Source
}

func NewFeedService(db *gorm.DB, src source.Source) *FeedService {
	return &FeedService{
		db:     db,
		source: src,
	}
}

// FeedUpdate carries optional metadata edits. Nil or blank values are left unchanged.
type FeedUpdate struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
}

// Register fetches url once to resolve its title and stores the feed.
// Entries are not ingested here; that is left to the next sync.
func (s *FeedService) Register(ctx context.Context, url, category string) (*model.Feed, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrValidation)
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = model.DefaultCategory
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.Feed{}).Where("url = ?", url).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSource, url)
	}

	parsed, err := s.source.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeedUnreachable, err)
	}

	feed := model.Feed{
		Title:    parsed.Title,
		URL:      url,
		Category: category,
	}
	if err := s.db.WithContext(ctx).Create(&feed).Error; err != nil {
		// lost a race with a concurrent registration of the same url
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSource, url)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"feed_id":  feed.ID,
		"url":      feed.URL,
		"category": feed.Category,
	}).Info("Feed registered")

	return &feed, nil
}

func (s *FeedService) Get(ctx context.Context, id uint) (*model.Feed, error) {
	var feed model.Feed
	if err := s.db.WithContext(ctx).First(&feed, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("feed %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &feed, nil
}

// List returns every feed, newest first, with counts computed from the
// article table in the same query.
func (s *FeedService) List(ctx context.Context) ([]model.FeedWithStats, error) {
	feeds := make([]model.FeedWithStats, 0)
	err := s.db.WithContext(ctx).
		Model(&model.Feed{}).
		Select(`feeds.*,
			(SELECT COUNT(*) FROM articles WHERE articles.feed_id = feeds.id) AS article_count,
			(SELECT COUNT(*) FROM articles WHERE articles.feed_id = feeds.id AND articles.is_read = ?) AS unread_count`, false).
		Order("feeds.created_at DESC").
		Order("feeds.id DESC").
		Scan(&feeds).Error
	if err != nil {
		return nil, err
	}
	return feeds, nil
}

func (s *FeedService) Update(ctx context.Context, id uint, upd FeedUpdate) (*model.Feed, error) {
	feed, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{
		"updated_at": s.db.NowFunc(),
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) != "" {
		changes["title"] = strings.TrimSpace(*upd.Title)
	}
	if upd.Category != nil && strings.TrimSpace(*upd.Category) != "" {
		changes["category"] = strings.TrimSpace(*upd.Category)
	}

	if err := s.db.WithContext(ctx).Model(feed).Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the feed together with all of its articles.
func (s *FeedService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var feed model.Feed
		if err := tx.First(&feed, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("feed %d: %w", id, ErrNotFound)
			}
			return err
		}

		res := tx.Where("feed_id = ?", id).Delete(&model.Article{})
		if res.Error != nil {
			return res.Error
		}
		if err := tx.Delete(&feed).Error; err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"feed_id":  id,
			"articles": res.RowsAffected,
		}).Info("Feed deleted")
		return nil
	})
}

// Categories lists the distinct categories currently assigned to feeds, in ascending order.
func (s *FeedService) Categories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&model.Feed{}).
		Distinct().
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}
