package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rssDocument = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example News</title>
    <link>https://news.example.com/</link>
    <item>
      <title>First</title>
      <link>https://news.example.com/1</link>
      <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title></title>
      <link>https://news.example.com/2</link>
    </item>
    <item>
      <title>No link</title>
    </item>
  </channel>
</rss>`

func newTestFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher(Options{Timeout: timeout, UserAgent: "go-reader-test/1.0"})
}

func TestFetchNormalizesEntries(t *testing.T) {
	var userAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssDocument))
	}))
	defer srv.Close()

	parsed, err := newTestFetcher(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "go-reader-test/1.0", userAgent)
	assert.Equal(t, "Example News", parsed.Title)
	require.Len(t, parsed.Entries, 3)

	first := parsed.Entries[0]
	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "https://news.example.com/1", first.Link)
	require.NotNil(t, first.Description)
	assert.Equal(t, "Hello world", *first.Description)
	require.NotNil(t, first.PublishedAt)
	assert.True(t, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC).Equal(*first.PublishedAt))

	second := parsed.Entries[1]
	assert.Equal(t, "Untitled", second.Title)
	assert.Nil(t, second.Description)
	assert.Nil(t, second.PublishedAt)

	assert.Empty(t, parsed.Entries[2].Link)
}

func TestFetchUntitledFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<rss version="2.0"><channel></channel></rss>`))
	}))
	defer srv.Close()

	parsed, err := newTestFetcher(5*time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Untitled Feed", parsed.Title)
	assert.Empty(t, parsed.Entries)
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not a feed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("this is not xml"))
			},
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(2 * time.Second):
				case <-r.Context().Done():
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			parsed, err := newTestFetcher(200*time.Millisecond).Fetch(context.Background(), srv.URL)
			assert.Error(t, err)
			assert.Nil(t, parsed)
		})
	}
}

func TestHostLimiterRejectsMissingHost(t *testing.T) {
	limiter := NewHostLimiter(time.Millisecond)
	assert.Error(t, limiter.Wait(context.Background(), "/relative/path"))
}

func TestHostLimiterSpacesRequests(t *testing.T) {
	limiter := NewHostLimiter(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "https://a.example/feed"))
	require.NoError(t, limiter.Wait(ctx, "https://b.example/feed"))
	assert.Less(t, time.Since(start), 40*time.Millisecond, "different hosts do not wait on each other")

	require.NoError(t, limiter.Wait(ctx, "https://a.example/other"))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
