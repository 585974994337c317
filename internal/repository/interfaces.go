// Package repository defines data access interfaces for clipforge entities.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"
	"time"

	"github.com/clipforge/clipforge/internal/models"
)

// ContentRepository defines operations for content item persistence.
type ContentRepository interface {
	// Create creates a new content item.
	Create(ctx context.Context, item *models.ContentItem) error
	// GetByID retrieves a content item by ID with its video and stats preloaded.
	GetByID(ctx context.Context, id models.ULID) (*models.ContentItem, error)
	// GetAll retrieves all content items, newest first, with videos and stats.
	GetAll(ctx context.Context) ([]*models.ContentItem, error)
	// GetByStatus retrieves content items in the given status, newest first.
	GetByStatus(ctx context.Context, status models.ContentStatus, limit int) ([]*models.ContentItem, error)
	// UpdateStatus unconditionally sets the status of a content item.
	UpdateStatus(ctx context.Context, id models.ULID, status models.ContentStatus) error
	// TransitionStatus atomically sets the status to `to` only if the current
	// persisted status is one of `from`. Returns true if the row was updated.
	// This conditional update is the single-flight guard for pipeline runs:
	// concurrent callers racing on the same item see exactly one winner.
	TransitionStatus(ctx context.Context, id models.ULID, from []models.ContentStatus, to models.ContentStatus) (bool, error)
}

// VideoJobRepository defines operations for pipeline attempt records.
type VideoJobRepository interface {
	// Create creates a new video job.
	Create(ctx context.Context, job *models.VideoJob) error
	// Update updates an existing video job.
	Update(ctx context.Context, job *models.VideoJob) error
	// GetByID retrieves a video job by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.VideoJob, error)
	// ListForDate retrieves jobs whose associated news batch date falls within
	// the half-open day window [startOfDay(day), startOfDay(day)+24h),
	// ordered by creation time descending.
	ListForDate(ctx context.Context, day time.Time) ([]*models.VideoJob, error)
	// GetByContentItemID retrieves all jobs for a content item, newest first.
	GetByContentItemID(ctx context.Context, contentItemID models.ULID) ([]*models.VideoJob, error)
}

// VideoRepository defines operations for published video persistence.
type VideoRepository interface {
	// Create creates a new video.
	Create(ctx context.Context, video *models.Video) error
	// Update updates an existing video.
	Update(ctx context.Context, video *models.Video) error
	// GetByID retrieves a video by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.Video, error)
	// GetByContentItemID retrieves the video produced for a content item.
	GetByContentItemID(ctx context.Context, contentItemID models.ULID) (*models.Video, error)
	// GetByUploadStatus retrieves all videos with the given upload status.
	GetByUploadStatus(ctx context.Context, status models.UploadStatus) ([]*models.Video, error)
}

// VideoStatsRepository defines operations for platform statistics persistence.
type VideoStatsRepository interface {
	// Upsert creates or replaces the stats row keyed by the video.
	Upsert(ctx context.Context, stats *models.VideoStats) error
	// GetByVideoID retrieves the stats row for a video.
	GetByVideoID(ctx context.Context, videoID models.ULID) (*models.VideoStats, error)
}

// NewsRepository defines operations for headline batch persistence.
type NewsRepository interface {
	// CreateBatch creates multiple news items in a single batch.
	CreateBatch(ctx context.Context, items []*models.News) error
	// GetByID retrieves a news item by ID.
	GetByID(ctx context.Context, id models.ULID) (*models.News, error)
	// GetByDate retrieves news items whose batch date falls on the given day.
	GetByDate(ctx context.Context, day time.Time) ([]*models.News, error)
}
