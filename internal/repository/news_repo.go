package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/models"
)

// newsRepo implements NewsRepository using GORM.
type newsRepo struct {
	db *gorm.DB
}

// NewNewsRepository creates a new NewsRepository.
func NewNewsRepository(db *gorm.DB) *newsRepo {
	return &newsRepo{db: db}
}

// CreateBatch persists a batch of headlines in a single transaction.
func (r *newsRepo) CreateBatch(ctx context.Context, items []*models.News) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("creating news batch: %w", err)
	}
	return nil
}

// GetByID retrieves a news item by ID.
func (r *newsRepo) GetByID(ctx context.Context, id models.ULID) (*models.News, error) {
	var news models.News
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&news).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting news by ID: %w", err)
	}
	return &news, nil
}

// GetByDate retrieves all headlines whose date falls on the given calendar
// day in that day's location.
func (r *newsRepo) GetByDate(ctx context.Context, day models.Time) ([]*models.News, error) {
	start := models.StartOfDay(day)
	end := start.AddDate(0, 0, 1)

	var items []*models.News
	if err := r.db.WithContext(ctx).
		Where("date >= ? AND date < ?", start, end).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("getting news by date: %w", err)
	}
	return items, nil
}

// Ensure newsRepo implements NewsRepository at compile time.
var _ NewsRepository = (*newsRepo)(nil)
