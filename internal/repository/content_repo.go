package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/models"
)

// contentRepo implements ContentRepository using GORM.
type contentRepo struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(db *gorm.DB) *contentRepo {
	return &contentRepo{db: db}
}

// Create creates a new content item.
func (r *contentRepo) Create(ctx context.Context, item *models.ContentItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("creating content item: %w", err)
	}
	return nil
}

// GetByID retrieves a content item by ID with its video and stats preloaded.
func (r *contentRepo) GetByID(ctx context.Context, id models.ULID) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := r.db.WithContext(ctx).
		Preload("Video").Preload("Video.Stats").
		Where("id = ?", id).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting content item by ID: %w", err)
	}
	return &item, nil
}

// GetAll retrieves all content items, newest first, with videos and stats.
func (r *contentRepo) GetAll(ctx context.Context) ([]*models.ContentItem, error) {
	var items []*models.ContentItem
	if err := r.db.WithContext(ctx).
		Preload("Video").Preload("Video.Stats").
		Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("getting all content items: %w", err)
	}
	return items, nil
}

// GetByStatus retrieves content items in the given status, newest first.
// A limit of 0 means no limit.
func (r *contentRepo) GetByStatus(ctx context.Context, status models.ContentStatus, limit int) ([]*models.ContentItem, error) {
	var items []*models.ContentItem
	query := r.db.WithContext(ctx).
		Preload("Video").
		Where("status = ?", status).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("getting content items by status: %w", err)
	}
	return items, nil
}

// UpdateStatus unconditionally sets the status of a content item.
func (r *contentRepo) UpdateStatus(ctx context.Context, id models.ULID, status models.ContentStatus) error {
	// Use UpdateColumn to skip hooks: BeforeUpdate would validate the
	// zero-value destination struct, not the stored row.
	result := r.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if result.Error != nil {
		return fmt.Errorf("updating content item status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("content item %s not found", id)
	}
	return nil
}

// TransitionStatus atomically moves the status from one of `from` to `to`.
// The condition is evaluated inside a single conditional UPDATE so races
// between concurrent callers (possibly in different processes) resolve to
// exactly one winner.
func (r *contentRepo) TransitionStatus(ctx context.Context, id models.ULID, from []models.ContentStatus, to models.ContentStatus) (bool, error) {
	// UpdateColumn, not Update: skips the BeforeUpdate hook, which has no
	// loaded row to validate here.
	result := r.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ? AND status IN ?", id, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("transitioning content item status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Ensure contentRepo implements ContentRepository at compile time.
var _ ContentRepository = (*contentRepo)(nil)
