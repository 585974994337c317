package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/repository"
	"github.com/clipforge/clipforge/internal/stages"
)

// NewsService ingests top headlines from the news provider and persists
// them as the day's batch.
type NewsService struct {
	fetcher stages.HeadlineFetcher
	news    repository.NewsRepository
	logger  *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewNewsService creates a NewsService.
func NewNewsService(fetcher stages.HeadlineFetcher, news repository.NewsRepository, logger *slog.Logger) *NewsService {
	return &NewsService{
		fetcher: fetcher,
		news:    news,
		logger:  logger.With(slog.String("component", "news-service")),
		now:     time.Now,
	}
}

// FetchAndStore fetches the current top headlines and persists them under
// today's batch date. Returns the stored rows.
func (s *NewsService) FetchAndStore(ctx context.Context) ([]*models.News, error) {
	articles, err := s.fetcher.TopHeadlines(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching headlines: %w", err)
	}

	day := models.StartOfDay(s.now())
	items := make([]*models.News, 0, len(articles))
	for _, article := range articles {
		if article.Title == "" {
			continue
		}
		items = append(items, &models.News{
			Date:     day,
			Headline: article.Title,
			URL:      article.URL,
			Source:   article.Source,
		})
	}

	if err := s.news.CreateBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("storing headlines: %w", err)
	}
	s.logger.Info("headlines ingested",
		slog.Int("count", len(items)),
		slog.Time("date", day),
	)
	return items, nil
}

// GetForDate returns the stored headlines for the given day.
func (s *NewsService) GetForDate(ctx context.Context, day time.Time) ([]*models.News, error) {
	return s.news.GetByDate(ctx, day)
}
