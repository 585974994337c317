package models

import "gorm.io/gorm"

// VideoJob records one end-to-end pipeline attempt for a content item.
// Multiple attempts on the same item produce multiple rows, but at most
// one row may be non-terminal at a time (enforced by the single-flight
// guard on the content item status, not by this table).
type VideoJob struct {
	BaseModel

	// ContentItemID references the item this attempt processes.
	ContentItemID ULID `gorm:"not null;type:varchar(26);index" json:"content_item_id"`

	// NewsID references the originating news batch item when the job was
	// created by the scheduler from a day's headlines (optional).
	NewsID *ULID `gorm:"type:varchar(26);index" json:"news_id,omitempty"`

	// News is the headline batch item this job originated from, if any.
	News *News `gorm:"foreignKey:NewsID" json:"news,omitempty"`

	// Stage is the name of the failing stage, empty for successful runs.
	Stage string `gorm:"size:50" json:"stage,omitempty"`

	// Error is the failure cause from the failing stage, empty on success.
	Error string `gorm:"size:4096" json:"error,omitempty"`

	// YouTubeID is the platform identifier produced by the upload stage.
	YouTubeID string `gorm:"size:64" json:"youtube_id,omitempty"`

	// InstagramID is the platform identifier produced by the upload stage.
	InstagramID string `gorm:"size:64" json:"instagram_id,omitempty"`

	// CompletedAt is when the attempt reached a terminal result.
	CompletedAt *Time `json:"completed_at,omitempty"`
}

// TableName returns the table name for VideoJob.
func (VideoJob) TableName() string {
	return "video_jobs"
}

// Succeeded returns true if the attempt finished without a stage failure.
func (j *VideoJob) Succeeded() bool {
	return j.CompletedAt != nil && j.Error == ""
}

// MarkCompleted records a successful attempt with its platform identifiers.
func (j *VideoJob) MarkCompleted(youtubeID, instagramID string) {
	now := Now()
	j.CompletedAt = &now
	j.YouTubeID = youtubeID
	j.InstagramID = instagramID
	j.Stage = ""
	j.Error = ""
}

// MarkFailed records the failing stage and cause.
func (j *VideoJob) MarkFailed(stage string, err error) {
	now := Now()
	j.CompletedAt = &now
	j.Stage = stage
	if err != nil {
		j.Error = err.Error()
	}
}

// Validate performs basic validation on the job.
func (j *VideoJob) Validate() error {
	if j.ContentItemID.IsZero() {
		return ErrContentItemIDRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the job and generates its ULID.
func (j *VideoJob) BeforeCreate(tx *gorm.DB) error {
	if err := j.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return j.Validate()
}
