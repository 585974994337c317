package integration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/pipeline"
	"github.com/clipforge/clipforge/internal/repository"
	"github.com/clipforge/clipforge/internal/scheduler"
	"github.com/clipforge/clipforge/internal/service"
	"github.com/clipforge/clipforge/internal/stages"
)

// providerServers stands in for the external stage providers, serving the
// JSON contracts each stage client expects.
type providerServers struct {
	script *httptest.Server
	speech *httptest.Server
	render *httptest.Server
	merge  *httptest.Server
	upload *httptest.Server
	stats  *httptest.Server
	news   *httptest.Server
}

func startProviders(t *testing.T) *providerServers {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	p := &providerServers{}

	p.script = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Tonight's top story in sixty seconds."}},
			},
		})
	}))
	p.speech = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"audio_url": "https://cdn.example.com/audio.mp3"})
	}))
	p.render = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"video_url": "https://cdn.example.com/footage.mp4"})
	}))
	p.merge = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"merged_url": "https://cdn.example.com/final.mp4"})
	}))
	p.upload = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{
			"youtube_url": "https://youtube.com/watch?v=yt-e2e",
			"youtube_id":  "yt-e2e",
		})
	}))
	p.stats = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/yt-e2e"))
		writeJSON(w, map[string]int64{"views": 1200, "likes": 40, "comments": 7})
	}))
	p.news = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"articles": []map[string]string{
				{"title": "Markets rally on rate news", "url": "https://news.example.com/markets", "source": "Example Wire"},
			},
		})
	}))

	t.Cleanup(func() {
		p.script.Close()
		p.speech.Close()
		p.render.Close()
		p.merge.Close()
		p.upload.Close()
		p.stats.Close()
		p.news.Close()
	})

	return p
}

func (p *providerServers) config() config.ProvidersConfig {
	return config.ProvidersConfig{
		Script: config.ProviderConfig{Endpoint: p.script.URL, Model: "gpt-4o-mini", APIKey: "test-key"},
		Speech: config.ProviderConfig{Endpoint: p.speech.URL, Voice: "alloy"},
		Render: config.ProviderConfig{Endpoint: p.render.URL},
		Merge:  config.ProviderConfig{Endpoint: p.merge.URL},
		Upload: config.ProviderConfig{Endpoint: p.upload.URL},
		Stats:  config.ProviderConfig{Endpoint: p.stats.URL},
		News:   config.ProviderConfig{Endpoint: p.news.URL},
	}
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite gives each pooled connection its own database.
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

// TestPipelineEndToEnd drives the whole production flow against real HTTP
// stage clients: headline ingest, job creation, every pipeline stage, and
// a statistics collection pass for the published video.
func TestPipelineEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers := startProviders(t)
	db := setupDB(t)

	contentRepo := repository.NewContentRepository(db)
	jobRepo := repository.NewVideoJobRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	statsRepo := repository.NewVideoStatsRepository(db)
	newsRepo := repository.NewNewsRepository(db)

	clients := stages.NewHTTPClients(providers.config(), discard)

	orchestrator := pipeline.NewOrchestrator(contentRepo, jobRepo, videoRepo, clients, config.PipelineConfig{
		StageTimeout:  10 * time.Second,
		RetryAttempts: 1,
	}, discard)
	newsSvc := service.NewNewsService(clients.News, newsRepo, discard)
	jobSvc := service.NewJobService(orchestrator, jobRepo, contentRepo, newsRepo, discard)

	// Ingest today's headlines.
	stored, err := newsSvc.FetchAndStore(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "Markets rally on rate news", stored[0].Headline)

	// Create content from the headline and run the full pipeline.
	results := jobSvc.CreateFromNews(ctx, []models.ULID{stored[0].ID})
	require.Len(t, results, 1)
	require.Empty(t, results[0].Error)
	assert.Equal(t, "yt-e2e", results[0].YouTubeID)

	// The item ends COMPLETED with a live video.
	item, err := contentRepo.GetByID(ctx, results[0].ContentID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, models.ContentStatusCompleted, item.Status)

	video, err := videoRepo.GetByContentItemID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, video)
	assert.Equal(t, "yt-e2e", video.YouTubeID)
	assert.Equal(t, models.UploadStatusUploaded, video.UploadStatus)

	// The job is listed under the headline's ingest day.
	jobs, err := jobSvc.ListJobsForDate(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.True(t, jobs[0].Succeeded())

	// A collection pass records platform statistics for the video.
	collector := scheduler.NewStatsCollector(videoRepo, statsRepo, clients.Stats, config.StatsConfig{
		Enabled:      true,
		PollInterval: time.Minute,
	}).WithLogger(discard)
	collector.CollectOnce(ctx)

	snapshot, err := statsRepo.GetByVideoID(ctx, video.ID)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, int64(1200), snapshot.Views)
	assert.Equal(t, int64(40), snapshot.Likes)
	assert.Equal(t, int64(7), snapshot.Comments)
}

// TestPipelineProviderFailureMarksItemFailed verifies that a hard provider
// failure surfaces as a failed run, and that the item can then be retried.
func TestPipelineProviderFailureMarksItemFailed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	providers := startProviders(t)
	db := setupDB(t)

	contentRepo := repository.NewContentRepository(db)
	jobRepo := repository.NewVideoJobRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	cfg := providers.config()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer broken.Close()
	cfg.Merge.Endpoint = broken.URL

	clients := stages.NewHTTPClients(cfg, discard)
	orchestrator := pipeline.NewOrchestrator(contentRepo, jobRepo, videoRepo, clients, config.PipelineConfig{
		StageTimeout:  10 * time.Second,
		RetryAttempts: 1,
	}, discard)

	item := &models.ContentItem{Title: "A story", SourceURL: "https://news.example.com/story"}
	require.NoError(t, contentRepo.Create(ctx, item))

	_, err := orchestrator.Run(ctx, item.ID)
	require.Error(t, err)

	var stageErr *pipeline.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, pipeline.StageMerging, stageErr.Stage)

	got, err := contentRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusFailed, got.Status)

	// FAILED is runnable again; fixing the provider lets the retry complete.
	cfg.Merge.Endpoint = providers.merge.URL
	clients = stages.NewHTTPClients(cfg, discard)
	orchestrator = pipeline.NewOrchestrator(contentRepo, jobRepo, videoRepo, clients, config.PipelineConfig{
		StageTimeout:  10 * time.Second,
		RetryAttempts: 1,
	}, discard)

	result, err := orchestrator.Run(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "yt-e2e", result.YouTubeID)

	got, err = contentRepo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusCompleted, got.Status)
}
