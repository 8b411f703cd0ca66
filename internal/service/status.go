package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"go-reader/internal/model"
)

type StatusService struct {
	db *gorm.DB
}

type SystemStatus struct {
	// Articles
	TotalArticles  int64 `json:"totalArticles"`
	UnreadArticles int64 `json:"unreadArticles"`

	// Feeds
	TotalFeeds      int64      `json:"totalFeeds"`
	TotalCategories int64      `json:"totalCategories"`
	LastFeedUpdate  *time.Time `json:"lastFeedUpdate,omitempty"`

	// Scheduler
	NextSyncTime *time.Time `json:"nextSyncTime,omitempty"`
}

func NewStatusService(db *gorm.DB) *StatusService {
	return &StatusService{db: db}
}

// GetSystemStatus collects store-wide counts.
func (s *StatusService) GetSystemStatus(ctx context.Context) (*SystemStatus, error) {
	db := s.db.WithContext(ctx)
	status := &SystemStatus{}

	if err := db.Model(&model.Article{}).Count(&status.TotalArticles).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Article{}).Where("is_read = ?", false).Count(&status.UnreadArticles).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&model.Feed{}).Count(&status.TotalFeeds).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Feed{}).Distinct("category").Count(&status.TotalCategories).Error; err != nil {
		return nil, err
	}

	if status.TotalFeeds > 0 {
		var latest model.Feed
		if err := db.Order("updated_at DESC").Take(&latest).Error; err != nil {
			return nil, err
		}
		status.LastFeedUpdate = &latest.UpdatedAt
	}

	return status, nil
}
