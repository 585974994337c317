package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/pipeline"
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

// runnerFunc adapts a function to service.Runner.
type runnerFunc func(ctx context.Context, contentID models.ULID) (*pipeline.RunResult, error)

func (f runnerFunc) Run(ctx context.Context, contentID models.ULID) (*pipeline.RunResult, error) {
	return f(ctx, contentID)
}

// headlineFetcherFunc adapts a function to stages.HeadlineFetcher.
type headlineFetcherFunc func(ctx context.Context) ([]stages.Article, error)

func (f headlineFetcherFunc) TopHeadlines(ctx context.Context) ([]stages.Article, error) {
	return f(ctx)
}

func newContentHandler(db *gorm.DB, fetcher stages.HeadlineFetcher) *ContentHandler {
	contentSvc := service.NewContentService(repository.NewContentRepository(db), testLogger())
	newsSvc := service.NewNewsService(fetcher, repository.NewNewsRepository(db), testLogger())
	return NewContentHandler(contentSvc, newsSvc).WithLogger(testLogger())
}

func assertStatusError(t *testing.T, err error, status int) {
	t.Helper()
	var statusErr huma.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, status, statusErr.GetStatus())
}

func TestContentHandler_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	h := newContentHandler(db, nil)
	ctx := context.Background()

	created, err := h.Create(ctx, &CreateContentInput{Body: service.CreateContentInput{
		Title:     "Markets rally",
		SourceURL: "https://news.example.com/markets",
	}})
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusSelected, created.Body.Status)

	got, err := h.Get(ctx, &GetContentInput{ID: created.Body.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, created.Body.ID, got.Body.ID)
}

func TestContentHandler_Create_Invalid(t *testing.T) {
	db := setupDB(t)
	h := newContentHandler(db, nil)

	_, err := h.Create(context.Background(), &CreateContentInput{Body: service.CreateContentInput{}})
	assertStatusError(t, err, 422)
}

func TestContentHandler_Get_NotFound(t *testing.T) {
	db := setupDB(t)
	h := newContentHandler(db, nil)

	_, err := h.Get(context.Background(), &GetContentInput{ID: models.NewULID().String()})
	assertStatusError(t, err, 404)

	_, err = h.Get(context.Background(), &GetContentInput{ID: "not-a-ulid"})
	assertStatusError(t, err, 422)
}

func TestContentHandler_CreateBulk(t *testing.T) {
	db := setupDB(t)
	h := newContentHandler(db, nil)

	input := &CreateBulkInput{}
	input.Body.Items = []service.CreateContentInput{
		{Title: "One", SourceURL: "https://news.example.com/1"},
		{Title: "Two", SourceURL: "https://news.example.com/2"},
		{Title: "Three", SourceURL: "https://news.example.com/3"},
	}

	out, err := h.CreateBulk(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Body.Count)
	assert.Empty(t, out.Body.Errors)

	// All created items are pending, none has a video.
	pending, err := h.ListPending(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, pending.Body.Count)
	for _, item := range pending.Body.Items {
		assert.Nil(t, item.Video)
	}
}

func TestContentHandler_FetchNews(t *testing.T) {
	db := setupDB(t)
	fetcher := headlineFetcherFunc(func(ctx context.Context) ([]stages.Article, error) {
		return []stages.Article{{Title: "Quake hits coastal region", URL: "https://news.example.com/quake"}}, nil
	})
	h := newContentHandler(db, fetcher)

	out, err := h.FetchNews(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Body.Count)
	assert.Equal(t, "Quake hits coastal region", out.Body.Items[0].Headline)
}

func TestContentHandler_FetchNews_ProviderDown(t *testing.T) {
	db := setupDB(t)
	fetcher := headlineFetcherFunc(func(ctx context.Context) ([]stages.Article, error) {
		return nil, errors.New("provider unavailable")
	})
	h := newContentHandler(db, fetcher)

	_, err := h.FetchNews(context.Background(), nil)
	assertStatusError(t, err, 502)
}

func TestJobHandler_Run_ErrorMapping(t *testing.T) {
	db := setupDB(t)
	jobsSvc := service.NewJobService(nil,
		repository.NewVideoJobRepository(db),
		repository.NewContentRepository(db),
		repository.NewNewsRepository(db),
		testLogger())

	tests := []struct {
		name   string
		runErr error
		status int
	}{
		{"not found", pipeline.ErrNotFound, 404},
		{"conflict", pipeline.ErrConflict, 409},
		{"stage failure", &pipeline.StageError{Stage: pipeline.StageMerging, Err: errors.New("boom")}, 502},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := runnerFunc(func(ctx context.Context, contentID models.ULID) (*pipeline.RunResult, error) {
				return nil, tt.runErr
			})
			h := NewJobHandler(runner, jobsSvc).WithLogger(testLogger())

			_, err := h.Run(context.Background(), &RunInput{ContentID: models.NewULID().String()})
			assertStatusError(t, err, tt.status)
		})
	}
}

func TestJobHandler_Run_Success(t *testing.T) {
	db := setupDB(t)
	jobID := models.NewULID()
	runner := runnerFunc(func(ctx context.Context, contentID models.ULID) (*pipeline.RunResult, error) {
		return &pipeline.RunResult{JobID: jobID, YouTubeID: "yt1", InstagramID: "ig1"}, nil
	})
	jobsSvc := service.NewJobService(runner,
		repository.NewVideoJobRepository(db),
		repository.NewContentRepository(db),
		repository.NewNewsRepository(db),
		testLogger())
	h := NewJobHandler(runner, jobsSvc).WithLogger(testLogger())

	out, err := h.Run(context.Background(), &RunInput{ContentID: models.NewULID().String()})
	require.NoError(t, err)
	assert.Equal(t, jobID, out.Body.JobID)
	assert.Equal(t, "yt1", out.Body.YouTubeID)
}

func TestJobHandler_CreateFromNews_PartialFailure(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	newsRepo := repository.NewNewsRepository(db)
	good := &models.News{Headline: "Quake", URL: "https://news.example.com/quake"}
	require.NoError(t, newsRepo.CreateBatch(ctx, []*models.News{good}))

	runner := runnerFunc(func(ctx context.Context, contentID models.ULID) (*pipeline.RunResult, error) {
		return &pipeline.RunResult{JobID: models.NewULID(), YouTubeID: "yt1"}, nil
	})
	jobsSvc := service.NewJobService(runner,
		repository.NewVideoJobRepository(db),
		repository.NewContentRepository(db),
		newsRepo,
		testLogger())
	h := NewJobHandler(runner, jobsSvc).WithLogger(testLogger())

	input := &CreateFromNewsInput{}
	input.Body.IDs = []string{good.ID.String(), models.NewULID().String()}

	out, err := h.CreateFromNews(ctx, input)
	require.NoError(t, err)
	assert.False(t, out.Body.Success)
	require.Len(t, out.Body.Results, 2)
	assert.True(t, out.Body.Results[0].Succeeded())
	assert.False(t, out.Body.Results[1].Succeeded())
}

func TestJobHandler_List_ByDate(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	newsRepo := repository.NewNewsRepository(db)
	contentRepo := repository.NewContentRepository(db)
	jobRepo := repository.NewVideoJobRepository(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	headline := &models.News{Date: day, Headline: "Quake"}
	require.NoError(t, newsRepo.CreateBatch(ctx, []*models.News{headline}))

	item := &models.ContentItem{Title: "Quake", SourceURL: "https://news.example.com/quake"}
	require.NoError(t, contentRepo.Create(ctx, item))
	require.NoError(t, jobRepo.Create(ctx, &models.VideoJob{ContentItemID: item.ID, NewsID: &headline.ID}))

	jobsSvc := service.NewJobService(nil, jobRepo, contentRepo, newsRepo, testLogger())
	h := NewJobHandler(nil, jobsSvc).WithLogger(testLogger())

	out, err := h.List(ctx, &ListJobsInput{Date: "2026-03-14"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Body.Count)

	empty, err := h.List(ctx, &ListJobsInput{Date: "2026-03-15"})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Body.Count)

	_, err = h.List(ctx, &ListJobsInput{Date: "14/03/2026"})
	assertStatusError(t, err, 422)
}

func TestHealthHandler(t *testing.T) {
	db := setupDB(t)
	h := NewHealthHandler("1.2.3").WithDB(db)

	out, err := h.GetHealth(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "healthy", out.Body.Status)
	assert.Equal(t, "1.2.3", out.Body.Version)
	assert.Equal(t, "ok", out.Body.Checks["database"])
}
