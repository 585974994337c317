package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/pipeline"
	"github.com/clipforge/clipforge/internal/repository"
)

// Runner starts one pipeline run for a content item.
type Runner interface {
	Run(ctx context.Context, contentID models.ULID) (*pipeline.RunResult, error)
}

// BatchItemResult is the per-item outcome of a batch run.
type BatchItemResult struct {
	ContentID   models.ULID `json:"content_id"`
	JobID       models.ULID `json:"job_id,omitempty"`
	YouTubeID   string      `json:"youtube_id,omitempty"`
	InstagramID string      `json:"instagram_id,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Succeeded reports whether this item's run completed.
func (r BatchItemResult) Succeeded() bool {
	return r.Error == ""
}

// JobService runs pipeline batches and answers job queries.
type JobService struct {
	runner  Runner
	jobs    repository.VideoJobRepository
	content repository.ContentRepository
	news    repository.NewsRepository
	logger  *slog.Logger
}

// NewJobService creates a JobService.
func NewJobService(
	runner Runner,
	jobs repository.VideoJobRepository,
	content repository.ContentRepository,
	news repository.NewsRepository,
	logger *slog.Logger,
) *JobService {
	return &JobService{
		runner:  runner,
		jobs:    jobs,
		content: content,
		news:    news,
		logger:  logger.With(slog.String("component", "job-service")),
	}
}

// RunBatch runs the pipeline for each content item in order. Items are
// processed sequentially and failures are isolated: a failed item is
// reported in its result and the batch moves on.
func (s *JobService) RunBatch(ctx context.Context, contentIDs []models.ULID) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(contentIDs))
	for _, id := range contentIDs {
		result := BatchItemResult{ContentID: id}

		runResult, err := s.runner.Run(ctx, id)
		if err != nil {
			result.Error = err.Error()
			s.logger.Warn("batch item failed",
				slog.String("content_id", id.String()),
				slog.String("error", err.Error()),
			)
		} else {
			result.JobID = runResult.JobID
			result.YouTubeID = runResult.YouTubeID
			result.InstagramID = runResult.InstagramID
		}
		results = append(results, result)

		if ctx.Err() != nil {
			break
		}
	}
	return results
}

// CreateFromNews creates a content item from each referenced headline and
// runs it through the pipeline, with the same per-item isolation as
// RunBatch. Unknown news IDs are reported as item errors.
func (s *JobService) CreateFromNews(ctx context.Context, newsIDs []models.ULID) []BatchItemResult {
	results := make([]BatchItemResult, 0, len(newsIDs))
	for _, newsID := range newsIDs {
		result := BatchItemResult{}

		item, err := s.contentFromNews(ctx, newsID)
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.ContentID = item.ID

		runResult, err := s.runner.Run(ctx, item.ID)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.JobID = runResult.JobID
			result.YouTubeID = runResult.YouTubeID
			result.InstagramID = runResult.InstagramID
		}
		results = append(results, result)

		if ctx.Err() != nil {
			break
		}
	}
	return results
}

func (s *JobService) contentFromNews(ctx context.Context, newsID models.ULID) (*models.ContentItem, error) {
	news, err := s.news.GetByID(ctx, newsID)
	if err != nil {
		return nil, fmt.Errorf("loading news item: %w", err)
	}
	if news == nil {
		return nil, fmt.Errorf("news item %s not found", newsID)
	}

	if news.URL == "" {
		return nil, fmt.Errorf("news item %s has no article URL", newsID)
	}

	item := &models.ContentItem{
		Title:     news.Headline,
		SourceURL: news.URL,
		Source:    news.Source,
		NewsID:    &news.ID,
		Status:    models.ContentStatusSelected,
	}
	if err := s.content.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating content item from news: %w", err)
	}
	return item, nil
}

// ListJobsForDate returns jobs whose headline batch date falls on the given
// day, newest first.
func (s *JobService) ListJobsForDate(ctx context.Context, day time.Time) ([]*models.VideoJob, error) {
	return s.jobs.ListForDate(ctx, day)
}
