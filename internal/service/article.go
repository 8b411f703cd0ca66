package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"go-reader/internal/model"
)

const (
	DefaultArticleLimit = 50
	MaxArticleLimit     = 200
)

type ArticleService struct {
	db *gorm.DB
}

func NewArticleService(db *gorm.DB) *ArticleService {
	return &ArticleService{db: db}
}

// ArticleFilter narrows ListArticles. All set fields must match.
type ArticleFilter struct {
	FeedID     *uint
	Category   string
	Search     string
	UnreadOnly bool
	Limit      int
	Offset     int
}

// Scope selects the articles MarkAllRead touches. FeedID wins over Category;
// neither set means every article.
type Scope struct {
	FeedID   *uint
	Category string
}

// ListArticles returns articles joined with their feed, newest publish date
// first, then newest ingestion. Articles without a publish date sort last.
func (s *ArticleService) ListArticles(ctx context.Context, f ArticleFilter) ([]model.ArticleWithFeed, error) {
	limit := f.Limit
	switch {
	case limit <= 0:
		limit = DefaultArticleLimit
	case limit > MaxArticleLimit:
		limit = MaxArticleLimit
	}
	offset := max(f.Offset, 0)

	query := s.db.WithContext(ctx).
		Model(&model.Article{}).
		Select("articles.*, feeds.title AS feed_title, feeds.category AS feed_category").
		Joins("JOIN feeds ON feeds.id = articles.feed_id")

	if f.FeedID != nil {
		query = query.Where("articles.feed_id = ?", *f.FeedID)
	}
	if f.Category != "" {
		query = query.Where("feeds.category = ?", f.Category)
	}
	if f.Search != "" {
		query = query.Where("articles.title LIKE ?", "%"+f.Search+"%")
	}
	if f.UnreadOnly {
		query = query.Where("articles.is_read = ?", false)
	}

	articles := make([]model.ArticleWithFeed, 0)
	err := query.
		Order("articles.pub_date DESC").
		Order("articles.created_at DESC").
		Order("articles.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&articles).Error
	if err != nil {
		return nil, err
	}
	return articles, nil
}

// SetRead sets the read flag of one article. Setting the current value is a no-op.
func (s *ArticleService) SetRead(ctx context.Context, id uint, isRead bool) (*model.Article, error) {
	db := s.db.WithContext(ctx)

	var article model.Article
	if err := db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("article %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	if err := db.Model(&article).Update("is_read", isRead).Error; err != nil {
		return nil, err
	}
	article.IsRead = isRead
	return &article, nil
}

// MarkAllRead marks every unread article in scope as read and returns how
// many changed. A category scope is resolved to its feeds at call time.
func (s *ArticleService) MarkAllRead(ctx context.Context, scope Scope) (int64, error) {
	db := s.db.WithContext(ctx)

	switch {
	case scope.FeedID != nil:
		return s.markFeedRead(db, *scope.FeedID)

	case scope.Category != "":
		var feedIDs []uint
		if err := db.Model(&model.Feed{}).Where("category = ?", scope.Category).Pluck("id", &feedIDs).Error; err != nil {
			return 0, err
		}

		var total int64
		for _, id := range feedIDs {
			n, err := s.markFeedRead(db, id)
			if err != nil {
				return total, err
			}
			total += n
		}
		log.WithFields(log.Fields{
			"category": scope.Category,
			"feeds":    len(feedIDs),
			"updated":  total,
		}).Debug("Marked category read")
		return total, nil

	default:
		res := db.Model(&model.Article{}).Where("is_read = ?", false).Update("is_read", true)
		return res.RowsAffected, res.Error
	}
}

func (s *ArticleService) markFeedRead(db *gorm.DB, feedID uint) (int64, error) {
	res := db.Model(&model.Article{}).
		Where("feed_id = ? AND is_read = ?", feedID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// FeedStats counts a feed's articles at read time.
func (s *ArticleService) FeedStats(ctx context.Context, feedID uint) (*model.FeedStats, error) {
	db := s.db.WithContext(ctx)

	var exists int64
	if err := db.Model(&model.Feed{}).Where("id = ?", feedID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("feed %d: %w", feedID, ErrNotFound)
	}

	stats := &model.FeedStats{}
	if err := db.Model(&model.Article{}).Where("feed_id = ?", feedID).Count(&stats.ArticleCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Article{}).Where("feed_id = ? AND is_read = ?", feedID, false).Count(&stats.UnreadCount).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
