package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/repository"
	"github.com/clipforge/clipforge/internal/stages"
)

// StatsCollector periodically refreshes platform statistics for every
// published video. It only ever reads Videos and writes VideoStats; it
// never creates a Video and never touches content items or jobs.
type StatsCollector struct {
	mu sync.Mutex

	videos   repository.VideoRepository
	stats    repository.VideoStatsRepository
	provider stages.StatsProvider
	cfg      config.StatsConfig
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStatsCollector creates a stats collector.
func NewStatsCollector(
	videos repository.VideoRepository,
	stats repository.VideoStatsRepository,
	provider stages.StatsProvider,
	cfg config.StatsConfig,
) *StatsCollector {
	return &StatsCollector{
		videos:   videos,
		stats:    stats,
		provider: provider,
		cfg:      cfg,
		logger:   slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (c *StatsCollector) WithLogger(logger *slog.Logger) *StatsCollector {
	c.logger = logger.With(slog.String("component", "stats-collector"))
	return c
}

// Start begins the background polling loop.
func (c *StatsCollector) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx != nil {
		return fmt.Errorf("stats collector already started")
	}
	if c.cfg.PollInterval <= 0 {
		return fmt.Errorf("stats poll interval must be positive")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.loop()

	c.logger.Info("stats collector started",
		slog.Duration("poll_interval", c.cfg.PollInterval),
	)
	return nil
}

// Stop stops the collector and waits for an in-flight poll to finish.
func (c *StatsCollector) Stop() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	c.ctx = nil
	c.cancel = nil
	c.mu.Unlock()

	c.logger.Info("stats collector stopped")
}

func (c *StatsCollector) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.CollectOnce(c.ctx)
		}
	}
}

// CollectOnce refreshes statistics for all published videos. Failures are
// isolated per video: one unreachable video does not block the rest.
func (c *StatsCollector) CollectOnce(ctx context.Context) {
	videos, err := c.videos.GetByUploadStatus(ctx, models.UploadStatusUploaded)
	if err != nil {
		c.logger.Error("failed to list published videos", slog.Any("error", err))
		return
	}
	if len(videos) == 0 {
		return
	}

	updated := 0
	for _, video := range videos {
		if ctx.Err() != nil {
			return
		}
		if err := c.collectVideo(ctx, video); err != nil {
			c.logger.Warn("failed to refresh video stats",
				slog.String("video_id", video.ID.String()),
				slog.String("youtube_id", video.YouTubeID),
				slog.String("error", err.Error()),
			)
			continue
		}
		updated++
	}

	c.logger.Info("stats collection pass finished",
		slog.Int("videos", len(videos)),
		slog.Int("updated", updated),
	)
}

func (c *StatsCollector) collectVideo(ctx context.Context, video *models.Video) error {
	snapshot, err := c.provider.FetchStats(ctx, video.YouTubeID)
	if err != nil {
		return err
	}

	return c.stats.Upsert(ctx, &models.VideoStats{
		VideoID:   video.ID,
		Views:     snapshot.Views,
		Likes:     snapshot.Likes,
		Comments:  snapshot.Comments,
		FetchedAt: models.Now(),
	})
}
