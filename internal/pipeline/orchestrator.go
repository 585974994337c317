// Package pipeline implements the news-to-video production pipeline.
// The orchestrator owns the content item state machine and walks each
// item through scripting, speech synthesis, rendering, merging and upload.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/repository"
	"github.com/clipforge/clipforge/internal/stages"
)

// Stage names recorded on failed jobs.
const (
	StageScripting       = "scripting"
	StageAudioGenerating = "audio_generating"
	StageVideoGenerating = "video_generating"
	StageMerging         = "merging"
	StageUploading       = "uploading"
)

// RunResult carries the outcome of a successful pipeline run.
type RunResult struct {
	JobID       models.ULID `json:"job_id"`
	YouTubeURL  string      `json:"youtube_url"`
	YouTubeID   string      `json:"youtube_id"`
	InstagramID string      `json:"instagram_id"`
}

// Orchestrator runs content items through the production pipeline.
// All progress is persisted through the repositories before each stage
// call, so a crashed run leaves an accurate status behind.
type Orchestrator struct {
	content repository.ContentRepository
	jobs    repository.VideoJobRepository
	videos  repository.VideoRepository
	clients *stages.Clients
	cfg     config.PipelineConfig
	logger  *slog.Logger
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(
	content repository.ContentRepository,
	jobs repository.VideoJobRepository,
	videos repository.VideoRepository,
	clients *stages.Clients,
	cfg config.PipelineConfig,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		content: content,
		jobs:    jobs,
		videos:  videos,
		clients: clients,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "pipeline")),
	}
}

// runnableStates are the only statuses a run may start from. Retrying a
// FAILED item restarts the pipeline from scratch.
var runnableStates = []models.ContentStatus{
	models.ContentStatusSelected,
	models.ContentStatusFailed,
}

// Run executes the full pipeline for one content item. The item is claimed
// with a conditional status update so concurrent runs on the same item
// resolve to exactly one winner; losers get ErrConflict. Exactly one
// VideoJob row records this attempt, and a Video row is created only when
// the upload stage succeeds.
func (o *Orchestrator) Run(ctx context.Context, contentID models.ULID) (*RunResult, error) {
	item, err := o.content.GetByID(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("loading content item: %w", err)
	}
	if item == nil {
		return nil, ErrNotFound
	}

	claimed, err := o.content.TransitionStatus(ctx, contentID, runnableStates, models.ContentStatusScripting)
	if err != nil {
		return nil, fmt.Errorf("claiming content item: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: status is %s", ErrConflict, item.Status)
	}

	job := &models.VideoJob{ContentItemID: contentID, NewsID: item.NewsID}
	if err := o.jobs.Create(ctx, job); err != nil {
		// Roll the claim back so the item stays retryable.
		o.markFailed(ctx, contentID, nil, "", err)
		return nil, fmt.Errorf("creating video job: %w", err)
	}

	logger := o.logger.With(
		slog.String("content_id", contentID.String()),
		slog.String("job_id", job.ID.String()),
	)
	logger.Info("pipeline run started", slog.String("title", item.Title))

	// Scripting: the claim above already persisted SCRIPTING.
	var script string
	err = o.callStage(ctx, logger, StageScripting, func(stageCtx context.Context) error {
		var stageErr error
		script, stageErr = o.clients.Script.GenerateScript(stageCtx, item.Title, item.SourceURL)
		return stageErr
	})
	if err != nil {
		return nil, o.failRun(ctx, logger, contentID, job, StageScripting, err)
	}

	var audioURL string
	err = o.advance(ctx, logger, contentID, job, models.ContentStatusAudioGenerating, StageAudioGenerating,
		func(stageCtx context.Context) error {
			var stageErr error
			audioURL, stageErr = o.clients.Speech.Synthesize(stageCtx, script)
			return stageErr
		})
	if err != nil {
		return nil, err
	}

	var videoURL string
	err = o.advance(ctx, logger, contentID, job, models.ContentStatusVideoGenerating, StageVideoGenerating,
		func(stageCtx context.Context) error {
			var stageErr error
			videoURL, stageErr = o.clients.Render.Render(stageCtx, item.Title, script)
			return stageErr
		})
	if err != nil {
		return nil, err
	}

	var mergedURL string
	err = o.advance(ctx, logger, contentID, job, models.ContentStatusMerging, StageMerging,
		func(stageCtx context.Context) error {
			var stageErr error
			mergedURL, stageErr = o.clients.Merge.Merge(stageCtx, audioURL, videoURL)
			return stageErr
		})
	if err != nil {
		return nil, err
	}

	var upload *stages.UploadResult
	err = o.advance(ctx, logger, contentID, job, models.ContentStatusUploading, StageUploading,
		func(stageCtx context.Context) error {
			var stageErr error
			upload, stageErr = o.clients.Upload.Upload(stageCtx, mergedURL, item.Title)
			return stageErr
		})
	if err != nil {
		return nil, err
	}

	video := &models.Video{
		ContentItemID: contentID,
		YouTubeURL:    upload.YouTubeURL,
		YouTubeID:     upload.YouTubeID,
		InstagramID:   upload.InstagramID,
		UploadStatus:  models.UploadStatusUploaded,
	}
	if err := o.videos.Create(ctx, video); err != nil {
		return nil, o.failRun(ctx, logger, contentID, job, StageUploading,
			fmt.Errorf("recording published video: %w", err))
	}

	job.MarkCompleted(upload.YouTubeID, upload.InstagramID)
	if err := o.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("completing video job: %w", err)
	}
	if err := o.content.UpdateStatus(ctx, contentID, models.ContentStatusCompleted); err != nil {
		return nil, fmt.Errorf("completing content item: %w", err)
	}

	logger.Info("pipeline run completed",
		slog.String("youtube_id", upload.YouTubeID),
		slog.String("instagram_id", upload.InstagramID),
	)

	return &RunResult{
		JobID:       job.ID,
		YouTubeURL:  upload.YouTubeURL,
		YouTubeID:   upload.YouTubeID,
		InstagramID: upload.InstagramID,
	}, nil
}

// advance persists the next stage status, then executes the stage. A stage
// is never invoked before its status is durable.
func (o *Orchestrator) advance(
	ctx context.Context,
	logger *slog.Logger,
	contentID models.ULID,
	job *models.VideoJob,
	status models.ContentStatus,
	stage string,
	fn func(context.Context) error,
) error {
	if err := o.content.UpdateStatus(ctx, contentID, status); err != nil {
		return o.failRun(ctx, logger, contentID, job, stage,
			fmt.Errorf("persisting status %s: %w", status, err))
	}
	if err := o.callStage(ctx, logger, stage, fn); err != nil {
		return o.failRun(ctx, logger, contentID, job, stage, err)
	}
	return nil
}

// callStage executes one stage call with the configured timeout and
// bounded retry. Retries are off by default; stage failures normally
// surface as FAILED and are retried by re-running the item.
func (o *Orchestrator) callStage(ctx context.Context, logger *slog.Logger, stage string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= o.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			logger.Warn("retrying stage",
				slog.String("stage", stage),
				slog.Int("attempt", attempt),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(o.cfg.RetryDelay):
			}
		}

		stageCtx := ctx
		var cancel context.CancelFunc = func() {}
		if o.cfg.StageTimeout > 0 {
			stageCtx, cancel = context.WithTimeout(ctx, o.cfg.StageTimeout)
		}
		start := time.Now()
		err := fn(stageCtx)
		cancel()

		if err == nil {
			logger.Debug("stage completed",
				slog.String("stage", stage),
				slog.Duration("duration", time.Since(start)),
			)
			return nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return lastErr
}

// failRun records a stage failure on the job, marks the item FAILED and
// returns the StageError. The item stays retryable from scratch.
func (o *Orchestrator) failRun(ctx context.Context, logger *slog.Logger, contentID models.ULID, job *models.VideoJob, stage string, err error) error {
	logger.Error("pipeline run failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
	o.markFailed(ctx, contentID, job, stage, err)
	return &StageError{Stage: stage, Err: err}
}

func (o *Orchestrator) markFailed(ctx context.Context, contentID models.ULID, job *models.VideoJob, stage string, cause error) {
	if updateErr := o.content.UpdateStatus(ctx, contentID, models.ContentStatusFailed); updateErr != nil {
		o.logger.Error("failed to persist FAILED status",
			slog.String("content_id", contentID.String()),
			slog.String("error", updateErr.Error()),
		)
	}
	if job == nil {
		return
	}
	job.MarkFailed(stage, cause)
	if updateErr := o.jobs.Update(ctx, job); updateErr != nil {
		o.logger.Error("failed to persist job failure",
			slog.String("job_id", job.ID.String()),
			slog.String("error", updateErr.Error()),
		)
	}
}
