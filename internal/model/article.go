package model

import "time"

type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	FeedID      uint       `gorm:"not null;index" json:"feedId"`
	Feed        *Feed      `gorm:"foreignKey:FeedID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string     `gorm:"not null" json:"title"`
	Link        string     `gorm:"size:2000;uniqueIndex;not null" json:"link"`
	Description *string    `gorm:"type:text" json:"description"`
	PubDate     *time.Time `gorm:"index" json:"pubDate"`
	IsRead      bool       `gorm:"not null;default:false;index" json:"isRead"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ArticleWithFeed is an article joined with its owning feed's current title and category.
type ArticleWithFeed struct {
	Article
	FeedTitle    string `json:"feedTitle"`
	FeedCategory string `json:"feedCategory"`
}
