package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/models"
)

// videoJobRepo implements VideoJobRepository using GORM.
type videoJobRepo struct {
	db *gorm.DB
}

// NewVideoJobRepository creates a new VideoJobRepository.
func NewVideoJobRepository(db *gorm.DB) *videoJobRepo {
	return &videoJobRepo{db: db}
}

// Create creates a new video job.
func (r *videoJobRepo) Create(ctx context.Context, job *models.VideoJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("creating video job: %w", err)
	}
	return nil
}

// Update updates an existing video job.
func (r *videoJobRepo) Update(ctx context.Context, job *models.VideoJob) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("updating video job: %w", err)
	}
	return nil
}

// GetByID retrieves a video job by ID.
func (r *videoJobRepo) GetByID(ctx context.Context, id models.ULID) (*models.VideoJob, error) {
	var job models.VideoJob
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video job by ID: %w", err)
	}
	return &job, nil
}

// ListForDate retrieves jobs whose news batch date falls within the half-open
// day window [startOfDay(day), startOfDay(day)+24h), newest first.
func (r *videoJobRepo) ListForDate(ctx context.Context, day time.Time) ([]*models.VideoJob, error) {
	start := models.StartOfDay(day)
	end := start.AddDate(0, 0, 1)

	var jobs []*models.VideoJob
	if err := r.db.WithContext(ctx).
		Joins("JOIN news ON news.id = video_jobs.news_id").
		Where("news.date >= ? AND news.date < ?", start, end).
		Order("video_jobs.created_at DESC").
		Preload("News").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing video jobs for date: %w", err)
	}
	return jobs, nil
}

// GetByContentItemID retrieves all jobs for a content item, newest first.
func (r *videoJobRepo) GetByContentItemID(ctx context.Context, contentItemID models.ULID) ([]*models.VideoJob, error) {
	var jobs []*models.VideoJob
	if err := r.db.WithContext(ctx).
		Where("content_item_id = ?", contentItemID).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("getting video jobs by content item ID: %w", err)
	}
	return jobs, nil
}

// Ensure videoJobRepo implements VideoJobRepository at compile time.
var _ VideoJobRepository = (*videoJobRepo)(nil)
