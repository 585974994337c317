package models

import "gorm.io/gorm"

// VideoStats holds the latest platform statistics for a published video.
// Upserted on each collector poll, keyed by the video.
type VideoStats struct {
	BaseModel

	// VideoID references the video these statistics belong to.
	VideoID ULID `gorm:"not null;type:varchar(26);uniqueIndex" json:"video_id"`

	// Views is the platform view count at FetchedAt.
	Views int64 `gorm:"not null;default:0" json:"views"`

	// Likes is the platform like count at FetchedAt.
	Likes int64 `gorm:"not null;default:0" json:"likes"`

	// Comments is the platform comment count at FetchedAt.
	Comments int64 `gorm:"not null;default:0" json:"comments"`

	// FetchedAt is when the counts were read from the platform.
	FetchedAt Time `gorm:"not null" json:"fetched_at"`
}

// TableName returns the table name for VideoStats.
func (VideoStats) TableName() string {
	return "video_stats"
}

// Validate performs basic validation on the stats row.
func (s *VideoStats) Validate() error {
	if s.VideoID.IsZero() {
		return ErrVideoIDRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the stats and generates a ULID.
func (s *VideoStats) BeforeCreate(tx *gorm.DB) error {
	if err := s.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return s.Validate()
}
