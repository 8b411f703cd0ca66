package model

import "time"

// DefaultCategory is assigned to feeds registered without a category.
const DefaultCategory = "Uncategorized"

type Feed struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:500;not null" json:"title"`
	URL       string    `gorm:"size:1000;uniqueIndex;not null" json:"url"`
	Category  string    `gorm:"size:255;not null;default:Uncategorized;index" json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FeedStats holds counts computed from the article table at read time.
type FeedStats struct {
	ArticleCount int64 `json:"articleCount"`
	UnreadCount  int64 `json:"unreadCount"`
}

type FeedWithStats struct {
	Feed
	FeedStats
}
