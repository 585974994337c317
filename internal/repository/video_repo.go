package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/models"
)

// videoRepo implements VideoRepository using GORM.
type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository.
func NewVideoRepository(db *gorm.DB) *videoRepo {
	return &videoRepo{db: db}
}

// Create creates a new video. The unique index on content_item_id enforces
// the one-to-one relationship with the producing item.
func (r *videoRepo) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("creating video: %w", err)
	}
	return nil
}

// Update updates an existing video.
func (r *videoRepo) Update(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("updating video: %w", err)
	}
	return nil
}

// GetByID retrieves a video by ID.
func (r *videoRepo) GetByID(ctx context.Context, id models.ULID) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&video).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video by ID: %w", err)
	}
	return &video, nil
}

// GetByContentItemID retrieves the video produced for a content item.
func (r *videoRepo) GetByContentItemID(ctx context.Context, contentItemID models.ULID) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).
		Where("content_item_id = ?", contentItemID).
		First(&video).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video by content item ID: %w", err)
	}
	return &video, nil
}

// GetByUploadStatus retrieves all videos with the given upload status.
func (r *videoRepo) GetByUploadStatus(ctx context.Context, status models.UploadStatus) ([]*models.Video, error) {
	var videos []*models.Video
	if err := r.db.WithContext(ctx).
		Where("upload_status = ?", status).
		Order("created_at ASC").
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("getting videos by upload status: %w", err)
	}
	return videos, nil
}

// Ensure videoRepo implements VideoRepository at compile time.
var _ VideoRepository = (*videoRepo)(nil)
