package models

import (
	"time"

	"gorm.io/gorm"
)

// News is one headline from an ingested batch. Its Date scopes job
// queries to a calendar day.
type News struct {
	BaseModel

	// Date is the day the headline batch was ingested, truncated to
	// day granularity in the server's local time.
	Date Time `gorm:"not null;index" json:"date"`

	// Headline is the article title as fetched from the news provider.
	Headline string `gorm:"not null;size:512" json:"headline"`

	// URL is the article URL.
	URL string `gorm:"size:2048" json:"url,omitempty"`

	// Source is the publisher name.
	Source string `gorm:"size:255" json:"source,omitempty"`
}

// TableName returns the table name for News.
func (News) TableName() string {
	return "news"
}

// Validate performs basic validation on the news item.
func (n *News) Validate() error {
	if n.Headline == "" {
		return ErrHeadlineRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the item, defaults the batch
// date to today and generates a ULID.
func (n *News) BeforeCreate(tx *gorm.DB) error {
	if err := n.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if n.Date.IsZero() {
		n.Date = StartOfDay(time.Now())
	}
	return n.Validate()
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
