package handlers

import (
	"context"
	"log/slog"

	"github.com/danielgtaylor/huma/v2"

	"github.com/clipforge/clipforge/internal/models"
	"github.com/clipforge/clipforge/internal/service"
)

// ContentHandler handles content item endpoints.
type ContentHandler struct {
	content *service.ContentService
	news    *service.NewsService
	logger  *slog.Logger
}

// NewContentHandler creates a content handler.
func NewContentHandler(content *service.ContentService, news *service.NewsService) *ContentHandler {
	return &ContentHandler{
		content: content,
		news:    news,
		logger:  slog.Default(),
	}
}

// WithLogger sets the logger for the handler.
func (h *ContentHandler) WithLogger(logger *slog.Logger) *ContentHandler {
	h.logger = logger
	return h
}

// Register registers the content routes with the API.
func (h *ContentHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "createContent",
		Method:      "POST",
		Path:        "/api/v1/content/create",
		Summary:     "Create a content item",
		Description: "Creates one content item in SELECTED status",
		Tags:        []string{"Content"},
	}, h.Create)

	huma.Register(api, huma.Operation{
		OperationID: "createContentBulk",
		Method:      "POST",
		Path:        "/api/v1/content/create-bulk",
		Summary:     "Create content items in bulk",
		Description: "Creates multiple content items; invalid items are reported without blocking the rest",
		Tags:        []string{"Content"},
	}, h.CreateBulk)

	huma.Register(api, huma.Operation{
		OperationID: "listAllContent",
		Method:      "GET",
		Path:        "/api/v1/content/all",
		Summary:     "List all content items",
		Description: "Returns all content items, newest first, with videos and stats",
		Tags:        []string{"Content"},
	}, h.ListAll)

	huma.Register(api, huma.Operation{
		OperationID: "listPendingContent",
		Method:      "GET",
		Path:        "/api/v1/content/pending",
		Summary:     "List pending content items",
		Description: "Returns content items still awaiting production",
		Tags:        []string{"Content"},
	}, h.ListPending)

	huma.Register(api, huma.Operation{
		OperationID: "fetchNews",
		Method:      "GET",
		Path:        "/api/v1/content/news",
		Summary:     "Fetch top headlines",
		Description: "Fetches the current top headlines and stores them as today's batch",
		Tags:        []string{"Content"},
	}, h.FetchNews)

	huma.Register(api, huma.Operation{
		OperationID: "getContent",
		Method:      "GET",
		Path:        "/api/v1/content/{id}",
		Summary:     "Get a content item",
		Description: "Returns one content item with its video and stats",
		Tags:        []string{"Content"},
	}, h.Get)
}

// CreateContentInput is the input for creating one content item.
type CreateContentInput struct {
	Body service.CreateContentInput
}

// ContentItemOutput wraps one content item.
type ContentItemOutput struct {
	Body *models.ContentItem
}

// Create creates one content item.
func (h *ContentHandler) Create(ctx context.Context, input *CreateContentInput) (*ContentItemOutput, error) {
	item, err := h.content.Create(ctx, input.Body)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	return &ContentItemOutput{Body: item}, nil
}

// CreateBulkInput is the input for bulk content creation.
type CreateBulkInput struct {
	Body struct {
		Items []service.CreateContentInput `json:"items"`
	}
}

// CreateBulkOutput is the output for bulk content creation.
type CreateBulkOutput struct {
	Body *service.BulkCreateResult
}

// CreateBulk creates multiple content items with per-item isolation.
func (h *ContentHandler) CreateBulk(ctx context.Context, input *CreateBulkInput) (*CreateBulkOutput, error) {
	result, err := h.content.CreateBulk(ctx, input.Body.Items)
	if err != nil {
		return nil, err
	}
	return &CreateBulkOutput{Body: result}, nil
}

// ContentListOutput wraps a list of content items.
type ContentListOutput struct {
	Body struct {
		Items []*models.ContentItem `json:"items"`
		Count int                   `json:"count"`
	}
}

// ListAll returns every content item.
func (h *ContentHandler) ListAll(ctx context.Context, _ *struct{}) (*ContentListOutput, error) {
	items, err := h.content.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := &ContentListOutput{}
	out.Body.Items = items
	out.Body.Count = len(items)
	return out, nil
}

// ListPending returns content items awaiting production.
func (h *ContentHandler) ListPending(ctx context.Context, _ *struct{}) (*ContentListOutput, error) {
	items, err := h.content.GetPending(ctx)
	if err != nil {
		return nil, err
	}
	out := &ContentListOutput{}
	out.Body.Items = items
	out.Body.Count = len(items)
	return out, nil
}

// GetContentInput is the input for fetching one content item.
type GetContentInput struct {
	ID string `path:"id" doc:"Content item ULID"`
}

// Get returns one content item by ID.
func (h *ContentHandler) Get(ctx context.Context, input *GetContentInput) (*ContentItemOutput, error) {
	id, err := models.ParseULID(input.ID)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("invalid content item ID")
	}

	item, err := h.content.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, huma.Error404NotFound("content item not found")
	}
	return &ContentItemOutput{Body: item}, nil
}

// NewsOutput wraps the ingested headlines.
type NewsOutput struct {
	Body struct {
		Items []*models.News `json:"items"`
		Count int            `json:"count"`
	}
}

// FetchNews fetches and stores the current top headlines.
func (h *ContentHandler) FetchNews(ctx context.Context, _ *struct{}) (*NewsOutput, error) {
	items, err := h.news.FetchAndStore(ctx)
	if err != nil {
		return nil, huma.Error502BadGateway(err.Error())
	}
	out := &NewsOutput{}
	out.Body.Items = items
	out.Body.Count = len(items)
	return out, nil
}
