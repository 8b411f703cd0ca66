package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	articlesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reader_articles_added_total",
		Help: "Articles inserted by feed syncs.",
	})

	articlesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reader_articles_skipped_total",
		Help: "Entries skipped by feed syncs because their link was already stored.",
	})

	feedSyncs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reader_feed_sync_total",
		Help: "Feed sync attempts by result.",
	}, []string{"result"})

	feedSyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "reader_feed_sync_duration_seconds",
		Help:    "Time spent syncing a single feed, fetch included.",
		Buckets: prometheus.DefBuckets,
	})
)
