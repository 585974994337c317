// Package service implements the application services sitting between the
// HTTP handlers and the repositories.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/repository"
)

// CreateContentInput carries the fields for creating one content item.
type CreateContentInput struct {
	Title       string       `json:"title"`
	SourceURL   string       `json:"source_url"`
	Source      string       `json:"source,omitempty"`
	PublishedAt *models.Time `json:"published_at,omitempty"`
}

// BulkCreateResult aggregates the outcome of a bulk create. Items that
// failed validation are reported in Errors; the rest are created.
type BulkCreateResult struct {
	Count  int                   `json:"count"`
	Items  []*models.ContentItem `json:"items"`
	Errors []string              `json:"errors,omitempty"`
}

// ContentService manages content items.
type ContentService struct {
	content repository.ContentRepository
	logger  *slog.Logger
}

// NewContentService creates a ContentService.
func NewContentService(content repository.ContentRepository, logger *slog.Logger) *ContentService {
	return &ContentService{
		content: content,
		logger:  logger.With(slog.String("component", "content-service")),
	}
}

// Create creates one content item in SELECTED status.
func (s *ContentService) Create(ctx context.Context, input CreateContentInput) (*models.ContentItem, error) {
	item := &models.ContentItem{
		Title:       input.Title,
		SourceURL:   input.SourceURL,
		Source:      input.Source,
		PublishedAt: input.PublishedAt,
		Status:      models.ContentStatusSelected,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.content.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("creating content item: %w", err)
	}
	s.logger.Info("content item created",
		slog.String("id", item.ID.String()),
		slog.String("title", item.Title),
	)
	return item, nil
}

// CreateBulk creates multiple content items with per-item failure isolation:
// one invalid item does not block the rest of the batch.
func (s *ContentService) CreateBulk(ctx context.Context, inputs []CreateContentInput) (*BulkCreateResult, error) {
	result := &BulkCreateResult{Items: make([]*models.ContentItem, 0, len(inputs))}
	for i, input := range inputs {
		item, err := s.Create(ctx, input)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("item %d: %v", i, err))
			continue
		}
		result.Items = append(result.Items, item)
	}
	result.Count = len(result.Items)
	return result, nil
}

// GetAll returns all content items, newest first, with videos and stats.
func (s *ContentService) GetAll(ctx context.Context) ([]*models.ContentItem, error) {
	return s.content.GetAll(ctx)
}

// GetPending returns content items still awaiting production.
func (s *ContentService) GetPending(ctx context.Context) ([]*models.ContentItem, error) {
	return s.content.GetByStatus(ctx, models.ContentStatusSelected, 0)
}

// GetByID returns one content item, or nil when it does not exist.
func (s *ContentService) GetByID(ctx context.Context, id models.ULID) (*models.ContentItem, error) {
	return s.content.GetByID(ctx, id)
}
