package models

import "gorm.io/gorm"

// UploadStatus represents whether a produced video is live on the platform.
type UploadStatus string

const (
	// UploadStatusUploaded indicates the video is live and eligible for stats polling.
	UploadStatusUploaded UploadStatus = "uploaded"
	// UploadStatusPending indicates the platform is still processing the upload.
	UploadStatusPending UploadStatus = "pending"
	// UploadStatusError indicates the platform rejected the upload after acceptance.
	UploadStatusError UploadStatus = "error"
)

// Valid returns true if the upload status is one of the defined values.
func (s UploadStatus) Valid() bool {
	switch s {
	case UploadStatusUploaded, UploadStatusPending, UploadStatusError:
		return true
	}
	return false
}

// Video is the published output of a completed pipeline run.
// Created only when the upload stage succeeds; one-to-one with its item.
type Video struct {
	BaseModel

	// ContentItemID references the item that produced this video.
	ContentItemID ULID `gorm:"not null;type:varchar(26);uniqueIndex" json:"content_item_id"`

	// YouTubeURL is the platform URL of the published video.
	YouTubeURL string `gorm:"size:2048" json:"youtube_url"`

	// YouTubeID is the platform identifier used for stats polling.
	YouTubeID string `gorm:"size:64;index" json:"youtube_id"`

	// InstagramID is the secondary platform identifier, if cross-posted.
	InstagramID string `gorm:"size:64" json:"instagram_id,omitempty"`

	// UploadStatus indicates whether the video is live on the platform.
	UploadStatus UploadStatus `gorm:"not null;default:'pending';size:20;index" json:"upload_status"`

	// Stats holds the most recently fetched platform statistics.
	Stats *VideoStats `gorm:"foreignKey:VideoID" json:"stats,omitempty"`
}

// TableName returns the table name for Video.
func (Video) TableName() string {
	return "videos"
}

// Live returns true if the video is eligible for stats polling.
func (v *Video) Live() bool {
	return v.UploadStatus == UploadStatusUploaded
}

// Validate performs basic validation on the video.
func (v *Video) Validate() error {
	if v.ContentItemID.IsZero() {
		return ErrContentItemIDRequired
	}
	if v.UploadStatus != "" && !v.UploadStatus.Valid() {
		return ErrInvalidUploadStatus
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the video and generates its ULID.
func (v *Video) BeforeCreate(tx *gorm.DB) error {
	if err := v.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if v.UploadStatus == "" {
		v.UploadStatus = UploadStatusPending
	}
	return v.Validate()
}

// BeforeUpdate is a GORM hook that validates the video before update.
func (v *Video) BeforeUpdate(tx *gorm.DB) error {
	return v.Validate()
}
