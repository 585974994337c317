// Package scheduler provides the background loops of clipforge: cron-based
// discovery of selected content items and periodic statistics collection.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/repository"
	"github.com/clipforge/clipforge/internal/service"
)

// BatchRunner runs a batch of content items through the pipeline.
type BatchRunner interface {
	RunBatch(ctx context.Context, contentIDs []models.ULID) []service.BatchItemResult
}

// Scheduler discovers selected content items on a cron schedule and feeds
// them through the pipeline, using the same batch entry point as
// user-triggered runs. Double fires are harmless: the pipeline's claim
// rejects items another run already picked up.
type Scheduler struct {
	mu sync.Mutex

	content repository.ContentRepository
	runner  BatchRunner
	cfg     config.SchedulerConfig
	logger  *slog.Logger

	parser cron.Parser

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// syncInterval is how often the loop checks whether the schedule is due.
	syncInterval time.Duration
	lastFire     time.Time
}

// NewScheduler creates a scheduler.
func NewScheduler(content repository.ContentRepository, runner BatchRunner, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		content:      content,
		runner:       runner,
		cfg:          cfg,
		logger:       slog.Default(),
		parser:       cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		syncInterval: time.Minute,
	}
}

// WithLogger sets a custom logger.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger.With(slog.String("component", "scheduler"))
	return s
}

// WithSyncInterval overrides how often the schedule is checked.
func (s *Scheduler) WithSyncInterval(interval time.Duration) *Scheduler {
	if interval > 0 {
		s.syncInterval = interval
	}
	return s
}

// ValidateCron validates a cron expression.
func (s *Scheduler) ValidateCron(expr string) error {
	_, err := s.parser.Parse(expr)
	return err
}

// Start begins the background discovery loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}
	if err := s.ValidateCron(s.cfg.Cron); err != nil {
		return fmt.Errorf("invalid scheduler cron %q: %w", s.cfg.Cron, err)
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop()

	s.logger.Info("scheduler started",
		slog.String("cron", s.cfg.Cron),
		slog.Int("batch_limit", s.cfg.BatchLimit),
	)
	return nil
}

// Stop stops the scheduler and waits for an in-flight batch to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	s.ctx = nil
	s.cancel = nil
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if s.isDue(time.Now()) {
				s.runDiscovery(s.ctx)
			}
		}
	}
}

// isDue checks whether the configured schedule fires within the current
// sync window, firing at most once per window.
func (s *Scheduler) isDue(now time.Time) bool {
	schedule, err := s.parser.Parse(s.cfg.Cron)
	if err != nil {
		return false
	}

	next := schedule.Next(now.Add(-s.syncInterval))
	if next.After(now) {
		return false
	}
	if !s.lastFire.IsZero() && next.Before(s.lastFire.Add(s.syncInterval)) {
		return false
	}
	s.lastFire = now
	return true
}

// runDiscovery picks up selected items and runs them through the pipeline.
func (s *Scheduler) runDiscovery(ctx context.Context) {
	items, err := s.content.GetByStatus(ctx, models.ContentStatusSelected, s.cfg.BatchLimit)
	if err != nil {
		s.logger.Error("failed to discover selected items", slog.Any("error", err))
		return
	}
	if len(items) == 0 {
		s.logger.Debug("no selected items to run")
		return
	}

	ids := make([]models.ULID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	s.logger.Info("running scheduled batch", slog.Int("count", len(ids)))
	results := s.runner.RunBatch(ctx, ids)

	succeeded := 0
	for _, result := range results {
		if result.Succeeded() {
			succeeded++
		}
	}
	s.logger.Info("scheduled batch finished",
		slog.Int("succeeded", succeeded),
		slog.Int("failed", len(results)-succeeded),
	)
}
