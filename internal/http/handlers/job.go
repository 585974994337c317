package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/pipeline"
	"github.com/clipforge/clipforge/internal/service"
)

// JobHandler handles pipeline run and job tracking endpoints.
type JobHandler struct {
	runner service.Runner
	jobs   *service.JobService
	logger *slog.Logger
}

// NewJobHandler creates a job handler.
func NewJobHandler(runner service.Runner, jobs *service.JobService) *JobHandler {
	return &JobHandler{
		runner: runner,
		jobs:   jobs,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the handler.
func (h *JobHandler) WithLogger(logger *slog.Logger) *JobHandler {
	h.logger = logger
	return h
}

// Register registers the pipeline and job routes with the API.
func (h *JobHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "runPipeline",
		Method:      "POST",
		Path:        "/api/v1/pipeline/run/{contentId}",
		Summary:     "Run the pipeline for one content item",
		Description: "Runs the full production pipeline. Returns 409 when the item is already being processed or is completed.",
		Tags:        []string{"Pipeline"},
	}, h.Run)

	huma.Register(api, huma.Operation{
		OperationID: "createJobsFromNews",
		Method:      "POST",
		Path:        "/api/v1/jobs/create-from-news",
		Summary:     "Create and run jobs from headlines",
		Description: "Creates a content item from each referenced headline and runs it through the pipeline, with per-item failure isolation",
		Tags:        []string{"Jobs"},
	}, h.CreateFromNews)

	huma.Register(api, huma.Operation{
		OperationID: "listJobs",
		Method:      "GET",
		Path:        "/api/v1/jobs",
		Summary:     "List jobs for a date",
		Description: "Returns jobs whose headline batch date falls on the given day (defaults to today), newest first",
		Tags:        []string{"Jobs"},
	}, h.List)
}

// RunInput is the input for running the pipeline.
type RunInput struct {
	ContentID string `path:"contentId" doc:"Content item ULID"`
}

// RunOutput is the output of a successful pipeline run.
type RunOutput struct {
	Body *pipeline.RunResult
}

// Run executes the pipeline for one content item.
func (h *JobHandler) Run(ctx context.Context, input *RunInput) (*RunOutput, error) {
	id, err := models.ParseULID(input.ContentID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid content item ID")
	}

	result, err := h.runner.Run(ctx, id)
	if err != nil {
		var stageErr *pipeline.StageError
		switch {
		case errors.Is(err, pipeline.ErrNotFound):
			return nil, huma.Error404NotFound("content item not found")
		case errors.Is(err, pipeline.ErrConflict):
			return nil, huma.Error409Conflict(err.Error())
		case errors.As(err, &stageErr):
			return nil, huma.Error502BadGateway(stageErr.Error())
		default:
			return nil, err
		}
	}
	return &RunOutput{Body: result}, nil
}

// CreateFromNewsInput is the input for batch runs from headlines.
type CreateFromNewsInput struct {
	Body struct {
		IDs []string `json:"ids" doc:"News item ULIDs"`
	}
}

// BatchOutput is the aggregated outcome of a batch run.
type BatchOutput struct {
	Body struct {
		Success bool                      `json:"success"`
		Results []service.BatchItemResult `json:"results"`
	}
}

// CreateFromNews creates content from headlines and runs the batch.
func (h *JobHandler) CreateFromNews(ctx context.Context, input *CreateFromNewsInput) (*BatchOutput, error) {
	ids := make([]models.ULID, 0, len(input.Body.IDs))
	for _, raw := range input.Body.IDs {
		id, err := models.ParseULID(raw)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("invalid news item ID: " + raw)
		}
		ids = append(ids, id)
	}

	results := h.jobs.CreateFromNews(ctx, ids)

	out := &BatchOutput{}
	out.Body.Success = true
	out.Body.Results = results
	for _, result := range results {
		if !result.Succeeded() {
			out.Body.Success = false
			break
		}
	}
	return out, nil
}

// ListJobsInput is the input for listing jobs.
type ListJobsInput struct {
	Date string `query:"date" doc:"Day to list jobs for (YYYY-MM-DD, defaults to today)"`
}

// ListJobsOutput wraps the job list.
type ListJobsOutput struct {
	Body struct {
		Items []*models.VideoJob `json:"items"`
		Count int                `json:"count"`
	}
}

// List returns the jobs for one day.
func (h *JobHandler) List(ctx context.Context, input *ListJobsInput) (*ListJobsOutput, error) {
	day := time.Now()
	if input.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.Date, time.Local)
		if err != nil {
			return nil, huma.Error422UnprocessableEntity("invalid date, expected YYYY-MM-DD")
		}
		day = parsed
	}

	jobs, err := h.jobs.ListJobsForDate(ctx, day)
	if err != nil {
		return nil, err
	}

	out := &ListJobsOutput{}
	out.Body.Items = jobs
	out.Body.Count = len(jobs)
	return out, nil
}
