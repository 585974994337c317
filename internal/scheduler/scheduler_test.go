package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/repository"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/stages"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.ContentItem{},
		&models.News{},
		&models.VideoJob{},
		&models.Video{},
		&models.VideoStats{},
	))
	return db
}

type recordingRunner struct {
	batches [][]models.ULID
}

func (r *recordingRunner) RunBatch(ctx context.Context, ids []models.ULID) []service.BatchItemResult {
	r.batches = append(r.batches, ids)
	results := make([]service.BatchItemResult, len(ids))
	for i, id := range ids {
		results[i] = service.BatchItemResult{ContentID: id, JobID: models.NewULID()}
	}
	return results
}

func seedSelected(t *testing.T, db *gorm.DB, n int) []models.ULID {
	t.Helper()
	repo := repository.NewContentRepository(db)
	ids := make([]models.ULID, n)
	for i := range ids {
		item := &models.ContentItem{
			Title:     "Selected item",
			SourceURL: "https://news.example.com/item",
			Status:    models.ContentStatusSelected,
		}
		require.NoError(t, repo.Create(context.Background(), item))
		ids[i] = item.ID
	}
	return ids
}

func TestScheduler_RunDiscovery(t *testing.T) {
	db := setupDB(t)
	seedSelected(t, db, 3)

	runner := &recordingRunner{}
	s := NewScheduler(repository.NewContentRepository(db), runner, config.SchedulerConfig{
		Cron:       "0 7 * * *",
		BatchLimit: 10,
	}).WithLogger(testLogger())

	s.runDiscovery(context.Background())

	require.Len(t, runner.batches, 1)
	assert.Len(t, runner.batches[0], 3)
}

func TestScheduler_RunDiscovery_BatchLimit(t *testing.T) {
	db := setupDB(t)
	seedSelected(t, db, 5)

	runner := &recordingRunner{}
	s := NewScheduler(repository.NewContentRepository(db), runner, config.SchedulerConfig{
		Cron:       "0 7 * * *",
		BatchLimit: 2,
	}).WithLogger(testLogger())

	s.runDiscovery(context.Background())

	require.Len(t, runner.batches, 1)
	assert.Len(t, runner.batches[0], 2)
}

func TestScheduler_RunDiscovery_NothingSelected(t *testing.T) {
	db := setupDB(t)

	runner := &recordingRunner{}
	s := NewScheduler(repository.NewContentRepository(db), runner, config.SchedulerConfig{
		Cron:       "0 7 * * *",
		BatchLimit: 10,
	}).WithLogger(testLogger())

	s.runDiscovery(context.Background())

	assert.Empty(t, runner.batches)
}

func TestScheduler_IsDue(t *testing.T) {
	db := setupDB(t)
	s := NewScheduler(repository.NewContentRepository(db), &recordingRunner{}, config.SchedulerConfig{
		Cron:       "0 7 * * *",
		BatchLimit: 10,
	}).WithLogger(testLogger())

	beforeFire := time.Date(2026, 3, 14, 6, 30, 0, 0, time.Local)
	assert.False(t, s.isDue(beforeFire))

	atFire := time.Date(2026, 3, 14, 7, 0, 30, 0, time.Local)
	assert.True(t, s.isDue(atFire))

	// Same window must not fire twice.
	assert.False(t, s.isDue(atFire.Add(10*time.Second)))
}

func TestScheduler_StartRejectsInvalidCron(t *testing.T) {
	db := setupDB(t)
	s := NewScheduler(repository.NewContentRepository(db), &recordingRunner{}, config.SchedulerConfig{
		Cron:       "not a cron",
		BatchLimit: 10,
	}).WithLogger(testLogger())

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid scheduler cron")
}

func TestScheduler_StartStop(t *testing.T) {
	db := setupDB(t)
	s := NewScheduler(repository.NewContentRepository(db), &recordingRunner{}, config.SchedulerConfig{
		Cron:       "0 7 * * *",
		BatchLimit: 10,
	}).WithLogger(testLogger())

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()), "double start must fail")
	s.Stop()

	// Restart after stop is allowed.
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

// statsProviderFunc adapts a function to stages.StatsProvider.
type statsProviderFunc func(ctx context.Context, videoID string) (*stages.PlatformStats, error)

func (f statsProviderFunc) FetchStats(ctx context.Context, videoID string) (*stages.PlatformStats, error) {
	return f(ctx, videoID)
}

func seedVideo(t *testing.T, db *gorm.DB, youtubeID string, status models.UploadStatus) *models.Video {
	t.Helper()
	contentRepo := repository.NewContentRepository(db)
	item := &models.ContentItem{
		Title:     "Published item " + youtubeID,
		SourceURL: "https://news.example.com/" + youtubeID,
		Status:    models.ContentStatusCompleted,
	}
	require.NoError(t, contentRepo.Create(context.Background(), item))

	video := &models.Video{
		ContentItemID: item.ID,
		YouTubeID:     youtubeID,
		UploadStatus:  status,
	}
	require.NoError(t, repository.NewVideoRepository(db).Create(context.Background(), video))
	return video
}

func TestStatsCollector_CollectOnce(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	live := seedVideo(t, db, "yt-live", models.UploadStatusUploaded)
	seedVideo(t, db, "yt-pending", models.UploadStatusPending)

	var polled []string
	provider := statsProviderFunc(func(ctx context.Context, videoID string) (*stages.PlatformStats, error) {
		polled = append(polled, videoID)
		return &stages.PlatformStats{Views: 500, Likes: 42, Comments: 9}, nil
	})

	statsRepo := repository.NewVideoStatsRepository(db)
	c := NewStatsCollector(repository.NewVideoRepository(db), statsRepo, provider, config.StatsConfig{
		Enabled:      true,
		PollInterval: time.Minute,
	}).WithLogger(testLogger())

	c.CollectOnce(ctx)

	// Only published videos are polled.
	assert.Equal(t, []string{"yt-live"}, polled)

	stats, err := statsRepo.GetByVideoID(ctx, live.ID)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(500), stats.Views)

	// A second pass overwrites in place rather than appending.
	c.CollectOnce(ctx)
	var count int64
	require.NoError(t, db.Model(&models.VideoStats{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStatsCollector_PerVideoIsolation(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	bad := seedVideo(t, db, "yt-bad", models.UploadStatusUploaded)
	good := seedVideo(t, db, "yt-good", models.UploadStatusUploaded)

	provider := statsProviderFunc(func(ctx context.Context, videoID string) (*stages.PlatformStats, error) {
		if videoID == "yt-bad" {
			return nil, errors.New("stats provider timeout")
		}
		return &stages.PlatformStats{Views: 7}, nil
	})

	statsRepo := repository.NewVideoStatsRepository(db)
	c := NewStatsCollector(repository.NewVideoRepository(db), statsRepo, provider, config.StatsConfig{
		Enabled:      true,
		PollInterval: time.Minute,
	}).WithLogger(testLogger())

	c.CollectOnce(ctx)

	stats, err := statsRepo.GetByVideoID(ctx, good.ID)
	require.NoError(t, err)
	require.NotNil(t, stats, "healthy video must still be refreshed")

	stats, err = statsRepo.GetByVideoID(ctx, bad.ID)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestStatsCollector_NeverCreatesVideos(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	seedVideo(t, db, "yt-live", models.UploadStatusUploaded)

	provider := statsProviderFunc(func(ctx context.Context, videoID string) (*stages.PlatformStats, error) {
		return &stages.PlatformStats{Views: 1}, nil
	})

	c := NewStatsCollector(repository.NewVideoRepository(db), repository.NewVideoStatsRepository(db), provider, config.StatsConfig{
		Enabled:      true,
		PollInterval: time.Minute,
	}).WithLogger(testLogger())

	c.CollectOnce(ctx)

	var videoCount int64
	require.NoError(t, db.Model(&models.Video{}).Count(&videoCount).Error)
	assert.Equal(t, int64(1), videoCount)

	var jobCount int64
	require.NoError(t, db.Model(&models.VideoJob{}).Count(&jobCount).Error)
	assert.Equal(t, int64(0), jobCount)
}
