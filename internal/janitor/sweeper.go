// Package janitor removes resume blobs that no candidate references.
//
// Such blobs appear when the process dies between storing a resume and
// inserting its candidate row, or when the compensating delete itself fails.
package janitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/careers-board/internal/metrics"
	"github.com/jonathan/careers-board/internal/storage"
)

// Blobs is the blob store surface the sweeper needs.
type Blobs interface {
	List(cutoff time.Time) ([]storage.BlobInfo, error)
	Delete(key string) error
}

// References reports which blob keys are still used by candidates.
type References interface {
	ReferencedResumePaths(ctx context.Context, keys []string) (map[string]bool, error)
}

// Sweeper deletes unreferenced blobs older than a grace period.
type Sweeper struct {
	blobs   Blobs
	refs    References
	grace   time.Duration
	now     func() time.Time
	metrics metrics.Sink
	log     logrus.FieldLogger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewSweeper creates a sweeper. Blobs younger than grace are never touched
// so that in-flight submissions keep their resume.
func NewSweeper(blobs Blobs, refs References, grace time.Duration, sink metrics.Sink, log logrus.FieldLogger) *Sweeper {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Sweeper{
		blobs:   blobs,
		refs:    refs,
		grace:   grace,
		now:     time.Now,
		metrics: sink,
		log:     log.WithField("component", "janitor"),
	}
}

// Sweep runs one pass and returns how many blobs were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	candidates, err := s.blobs.List(s.now().Add(-s.grace))
	if err != nil {
		return 0, fmt.Errorf("failed to list blobs: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	keys := make([]string, len(candidates))
	for i, b := range candidates {
		keys[i] = b.Key
	}
	referenced, err := s.refs.ReferencedResumePaths(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("failed to check references: %w", err)
	}

	removed := 0
	for _, key := range keys {
		if referenced[key] {
			continue
		}
		if err := s.blobs.Delete(key); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("failed to delete orphaned blob")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.metrics.OrphansRemoved(removed)
		s.log.WithFields(logrus.Fields{"removed": removed, "checked": len(keys)}).Info("orphaned blobs removed")
	}
	return removed, nil
}

// Start schedules Sweep on a standard five-field cron expression.
func (s *Sweeper) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.WithError(err).Error("sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.WithField("schedule", schedule).Info("orphan sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

// Run starts the schedule and stops it when ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context, schedule string) error {
	if err := s.Start(schedule); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}
