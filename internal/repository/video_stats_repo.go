package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clipforge/clipforge/internal/models"
)

// videoStatsRepo implements VideoStatsRepository using GORM.
type videoStatsRepo struct {
	db *gorm.DB
}

// NewVideoStatsRepository creates a new VideoStatsRepository.
func NewVideoStatsRepository(db *gorm.DB) *videoStatsRepo {
	return &videoStatsRepo{db: db}
}

// Upsert inserts the stats row for a video or, when one already exists,
// overwrites its counters and fetch timestamp in place. At most one row
// per video exists at any time.
func (r *videoStatsRepo) Upsert(ctx context.Context, stats *models.VideoStats) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"views", "likes", "comments", "fetched_at", "updated_at",
		}),
	}).Create(stats).Error; err != nil {
		return fmt.Errorf("upserting video stats: %w", err)
	}
	return nil
}

// GetByVideoID retrieves the stats row for a video.
func (r *videoStatsRepo) GetByVideoID(ctx context.Context, videoID models.ULID) (*models.VideoStats, error) {
	var stats models.VideoStats
	if err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		First(&stats).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("getting video stats by video ID: %w", err)
	}
	return &stats, nil
}

// Ensure videoStatsRepo implements VideoStatsRepository at compile time.
var _ VideoStatsRepository = (*videoStatsRepo)(nil)
