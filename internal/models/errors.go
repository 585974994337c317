package models

import "errors"

// Common validation errors for models.
var (
	// ErrTitleRequired indicates a required title field is empty.
	ErrTitleRequired = errors.New("title is required")

	// ErrSourceURLRequired indicates a required source URL field is empty.
	ErrSourceURLRequired = errors.New("source_url is required")

	// ErrInvalidContentStatus indicates a status outside the defined state set.
	ErrInvalidContentStatus = errors.New("invalid content status")

	// ErrContentItemIDRequired indicates a required content item reference is zero.
	ErrContentItemIDRequired = errors.New("content_item_id is required")

	// ErrVideoIDRequired indicates a required video reference is zero.
	ErrVideoIDRequired = errors.New("video_id is required")

	// ErrInvalidUploadStatus indicates an upload status outside the defined set.
	ErrInvalidUploadStatus = errors.New("invalid upload status: must be 'uploaded', 'pending' or 'error'")

	// ErrHeadlineRequired indicates a required headline field is empty.
	ErrHeadlineRequired = errors.New("headline is required")
)
