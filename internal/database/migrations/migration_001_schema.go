package migrations

import (
	"gorm.io/gorm"

	"github.com/clipforge/clipforge/internal/models"
)

// migration001Schema creates the initial table set for clipforge:
// content_items, video_jobs, videos, video_stats and news.
func migration001Schema() Migration {
	return Migration{
		Version:     "001",
		Description: "Initial schema",
		Up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&models.ContentItem{},
				&models.News{},
				&models.VideoJob{},
				&models.Video{},
				&models.VideoStats{},
			)
		},
		Down: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&models.VideoStats{},
				&models.Video{},
				&models.VideoJob{},
				&models.News{},
				&models.ContentItem{},
			)
		},
	}
}
