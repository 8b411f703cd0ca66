package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"go-reader/internal/service"
)

// BatchSyncer runs a sync over every registered feed.
type BatchSyncer interface {
	SyncAll(ctx context.Context) (*service.BatchResult, error)
}

type Scheduler struct {
	cron        *cron.Cron
	syncer      BatchSyncer
	spec        string
	syncEntryID cron.EntryID
}

func NewScheduler(syncer BatchSyncer, spec string) *Scheduler {
	logger := cron.PrintfLogger(log.WithField("component", "cron"))
	return &Scheduler{
		// a batch that overruns the interval delays the next one instead of overlapping it
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(logger)), cron.WithLogger(logger)),
		syncer: syncer,
		spec:   spec,
	}
}

func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(s.spec, s.runSync)
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", s.spec, err)
	}
	s.syncEntryID = id

	s.cron.Start()
	log.WithField("schedule", s.spec).Info("Scheduler started")
	return nil
}

func (s *Scheduler) runSync() {
	log.Info("Scheduled sync of all feeds")
	result, err := s.syncer.SyncAll(context.Background())
	if err != nil {
		log.WithError(err).Error("Scheduled sync failed")
		return
	}
	log.WithField("added", result.TotalAdded).Info("Scheduled sync done")
}

// NextSyncTime returns when the next scheduled sync fires, or the zero time
// if the scheduler has not been started.
func (s *Scheduler) NextSyncTime() time.Time {
	if s.syncEntryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.syncEntryID).Next
}

// Stop halts scheduling and waits for a running sync to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
