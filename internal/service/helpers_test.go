package service

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"go-reader/internal/database"
	"go-reader/internal/model"
	"go-reader/internal/source"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "reader.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newMockSource(t *testing.T) *source.MockSource {
	t.Helper()
	return source.NewMockSource(gomock.NewController(t))
}

// entries builds entries with links base/from..base/to-1, newest last.
func entries(base string, from, to int) []source.Entry {
	out := make([]source.Entry, 0, to-from)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := from; i < to; i++ {
		pub := start.Add(time.Duration(i) * time.Hour)
		out = append(out, source.Entry{
			Title:       fmt.Sprintf("Entry %d", i),
			Link:        fmt.Sprintf("%s/%d", base, i),
			PublishedAt: &pub,
		})
	}
	return out
}

func createFeed(t *testing.T, db *gorm.DB, url, category string) model.Feed {
	t.Helper()
	feed := model.Feed{Title: url, URL: url, Category: category}
	require.NoError(t, db.Create(&feed).Error)
	return feed
}

func countArticles(t *testing.T, db *gorm.DB, feedID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Article{}).Where("feed_id = ?", feedID).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T {
	return &v
}
