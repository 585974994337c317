package models

import "gorm.io/gorm"

// ContentStatus represents where a content item is in the production pipeline.
// The status column is the single source of truth for pipeline progress.
type ContentStatus string

const (
	// ContentStatusSelected indicates the item is selected and awaiting production.
	ContentStatusSelected ContentStatus = "SELECTED"
	// ContentStatusScripting indicates the script generation stage is running.
	ContentStatusScripting ContentStatus = "SCRIPTING"
	// ContentStatusAudioGenerating indicates the text-to-speech stage is running.
	ContentStatusAudioGenerating ContentStatus = "AUDIO_GENERATING"
	// ContentStatusVideoGenerating indicates the video render stage is running.
	ContentStatusVideoGenerating ContentStatus = "VIDEO_GENERATING"
	// ContentStatusMerging indicates the audio/video merge stage is running.
	ContentStatusMerging ContentStatus = "MERGING"
	// ContentStatusUploading indicates the platform upload stage is running.
	ContentStatusUploading ContentStatus = "UPLOADING"
	// ContentStatusCompleted indicates the pipeline finished and a Video exists.
	ContentStatusCompleted ContentStatus = "COMPLETED"
	// ContentStatusFailed indicates a stage failed; the item may be retried.
	ContentStatusFailed ContentStatus = "FAILED"
)

// StageOrder is the canonical progression of in-flight statuses.
// Persisted status sequences for any item are prefixes of this order,
// optionally terminated by FAILED.
var StageOrder = []ContentStatus{
	ContentStatusSelected,
	ContentStatusScripting,
	ContentStatusAudioGenerating,
	ContentStatusVideoGenerating,
	ContentStatusMerging,
	ContentStatusUploading,
	ContentStatusCompleted,
}

// Valid returns true if the status is one of the defined states.
func (s ContentStatus) Valid() bool {
	switch s {
	case ContentStatusSelected, ContentStatusScripting, ContentStatusAudioGenerating,
		ContentStatusVideoGenerating, ContentStatusMerging, ContentStatusUploading,
		ContentStatusCompleted, ContentStatusFailed:
		return true
	}
	return false
}

// Terminal returns true for COMPLETED and FAILED.
func (s ContentStatus) Terminal() bool {
	return s == ContentStatusCompleted || s == ContentStatusFailed
}

// Runnable returns true if a pipeline run may start from this status.
// Only freshly selected items and failed items (retry) qualify.
func (s ContentStatus) Runnable() bool {
	return s == ContentStatusSelected || s == ContentStatusFailed
}

// ContentItem is a selected news article awaiting or undergoing video production.
type ContentItem struct {
	BaseModel

	// Title is the article headline used for script generation.
	Title string `gorm:"not null;size:512" json:"title"`

	// SourceURL is the canonical URL of the article.
	SourceURL string `gorm:"not null;size:2048" json:"source_url"`

	// Source is the publisher name (optional).
	Source string `gorm:"size:255" json:"source,omitempty"`

	// PublishedAt is when the article was published (optional).
	PublishedAt *Time `json:"published_at,omitempty"`

	// NewsID references the ingested headline this item was created from,
	// when it came through the news flow (optional).
	NewsID *ULID `gorm:"type:varchar(26);index" json:"news_id,omitempty"`

	// Status is the authoritative pipeline position for this item.
	Status ContentStatus `gorm:"not null;default:'SELECTED';size:20;index" json:"status"`

	// Video is the produced video, present only after a completed run.
	Video *Video `gorm:"foreignKey:ContentItemID" json:"video,omitempty"`
}

// TableName returns the table name for ContentItem.
func (ContentItem) TableName() string {
	return "content_items"
}

// Validate performs basic validation on the content item.
func (c *ContentItem) Validate() error {
	if c.Title == "" {
		return ErrTitleRequired
	}
	if c.SourceURL == "" {
		return ErrSourceURLRequired
	}
	if c.Status != "" && !c.Status.Valid() {
		return ErrInvalidContentStatus
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the item and generates its ULID.
func (c *ContentItem) BeforeCreate(tx *gorm.DB) error {
	if err := c.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = ContentStatusSelected
	}
	return c.Validate()
}

// BeforeUpdate is a GORM hook that validates the item before update.
func (c *ContentItem) BeforeUpdate(tx *gorm.DB) error {
	return c.Validate()
}
