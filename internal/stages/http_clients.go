package stages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/clipforge/clipforge/internal/config"
	"github.com/clipforge/clipforge/pkg/httpclient"
)

// ErrProviderMisconfigured is returned when a stage provider is called
// without an endpoint configured.
var ErrProviderMisconfigured = errors.New("stage provider misconfigured")

// newProviderClient builds a resilient HTTP client for one provider.
func newProviderClient(cfg config.ProviderConfig, logger *slog.Logger) *httpclient.Client {
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Logger = logger
	if cfg.Timeout > 0 {
		clientCfg.Timeout = cfg.Timeout
	}
	// The orchestrator owns stage retry policy; the transport layer only
	// rides out transient provider hiccups.
	clientCfg.RetryAttempts = 1
	return httpclient.New(clientCfg)
}

func authHeaders(apiKey string) map[string]string {
	if apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + apiKey}
}

// NewHTTPClients builds the full stage client bundle from provider config.
func NewHTTPClients(cfg config.ProvidersConfig, logger *slog.Logger) *Clients {
	return &Clients{
		Script: NewScriptClient(cfg.Script, logger),
		Speech: NewSpeechClient(cfg.Speech, logger),
		Render: NewRenderClient(cfg.Render, logger),
		Merge:  NewMergeClient(cfg.Merge, logger),
		Upload: NewUploadClient(cfg.Upload, logger),
		Stats:  NewStatsClient(cfg.Stats, logger),
		News:   NewNewsClient(cfg.News, logger),
	}
}

// scriptClient generates narration scripts through an OpenAI-compatible
// chat completion endpoint.
type scriptClient struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

// NewScriptClient creates a ScriptGenerator backed by a chat completion API.
func NewScriptClient(cfg config.ProviderConfig, logger *slog.Logger) *scriptClient {
	return &scriptClient{
		cfg:    cfg,
		client: newProviderClient(cfg, logger.With(slog.String("provider", "script"))),
	}
}

const scriptSystemPrompt = "You write tight 60-second narration scripts for " +
	"short-form news videos. Respond with the script text only, no headings " +
	"or markup."

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *scriptClient) GenerateScript(ctx context.Context, title, sourceURL string) (string, error) {
	if c.cfg.Endpoint == "" || c.cfg.Model == "" {
		return "", fmt.Errorf("%w: script endpoint and model are required", ErrProviderMisconfigured)
	}

	req := chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: scriptSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("Headline: %s\nSource: %s", title, sourceURL)},
		},
	}

	var resp chatCompletionResponse
	if err := c.client.PostJSON(ctx, c.cfg.Endpoint, authHeaders(c.cfg.APIKey), req, &resp); err != nil {
		return "", fmt.Errorf("generating script: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generating script: empty completion")
	}

	script := strings.TrimSpace(resp.Choices[0].Message.Content)
	if script == "" {
		return "", fmt.Errorf("generating script: blank completion")
	}
	return script, nil
}

var _ ScriptGenerator = (*scriptClient)(nil)

// speechClient converts scripts to audio through a TTS provider.
type speechClient struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

// NewSpeechClient creates a SpeechSynthesizer backed by a TTS API.
func NewSpeechClient(cfg config.ProviderConfig, logger *slog.Logger) *speechClient {
	return &speechClient{
		cfg:    cfg,
		client: newProviderClient(cfg, logger.With(slog.String("provider", "speech"))),
	}
}

func (c *speechClient) Synthesize(ctx context.Context, script string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("%w: speech endpoint is required", ErrProviderMisconfigured)
	}

	req := map[string]string{
		"text":  script,
		"voice": c.cfg.Voice,
	}
	var resp struct {
		AudioURL string `json:"audio_url"`
	}
	if err := c.client.PostJSON(ctx, c.cfg.Endpoint, authHeaders(c.cfg.APIKey), req, &resp); err != nil {
		return "", fmt.Errorf("synthesizing speech: %w", err)
	}
	if resp.AudioURL == "" {
		return "", fmt.Errorf("synthesizing speech: provider returned no audio URL")
	}
	return resp.AudioURL, nil
}

var _ SpeechSynthesizer = (*speechClient)(nil)

// renderClient produces background footage through a render provider.
type renderClient struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

// NewRenderClient creates a VideoRenderer backed by a render API.
func NewRenderClient(cfg config.ProviderConfig, logger *slog.Logger) *renderClient {
	return &renderClient{
		cfg:    cfg,
		client: newProviderClient(cfg, logger.With(slog.String("provider", "render"))),
	}
}

func (c *renderClient) Render(ctx context.Context, title, script string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("%w: render endpoint is required", ErrProviderMisconfigured)
	}

	req := map[string]string{
		"title":  title,
		"script": script,
	}
	var resp struct {
		VideoURL string `json:"video_url"`
	}
	if err := c.client.PostJSON(ctx, c.cfg.Endpoint, authHeaders(c.cfg.APIKey), req, &resp); err != nil {
		return "", fmt.Errorf("rendering video: %w", err)
	}
	if resp.VideoURL == "" {
		return "", fmt.Errorf("rendering video: provider returned no video URL")
	}
	return resp.VideoURL, nil
}

var _ VideoRenderer = (*renderClient)(nil)

// mergeClient combines audio and video assets through a merge provider.
type mergeClient struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

// NewMergeClient creates a Merger backed by an A/V merge API.
func NewMergeClient(cfg config.ProviderConfig, logger *slog.Logger) *mergeClient {
	return &mergeClient{
		cfg:    cfg,
		client: newProviderClient(cfg, logger.With(slog.String("provider", "merge"))),
	}
}

func (c *mergeClient) Merge(ctx context.Context, audioURL, videoURL string) (string, error) {
	if c.cfg.Endpoint == "" {
		return "", fmt.Errorf("%w: merge endpoint is required", ErrProviderMisconfigured)
	}

	req := map[string]string{
		"audio_url": audioURL,
		"video_url": videoURL,
	}
	var resp struct {
		MergedURL string `json:"merged_url"`
	}
	if err := c.client.PostJSON(ctx, c.cfg.Endpoint, authHeaders(c.cfg.APIKey), req, &resp); err != nil {
		return "", fmt.Errorf("merging assets: %w", err)
	}
	if resp.MergedURL == "" {
		return "", fmt.Errorf("merging assets: provider returned no merged URL")
	}
	return resp.MergedURL, nil
}

var _ Merger = (*mergeClient)(nil)

// uploadClient publishes the final cut through the upload provider.
type uploadClient struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

// NewUploadClient creates an Uploader backed by the platform upload API.
func NewUploadClient(cfg config.ProviderConfig, logger *slog.Logger) *uploadClient {
	return &uploadClient{
		cfg:    cfg,
		client: newProviderClient(cfg, logger.With(slog.String("provider", "upload"))),
	}
}

func (c *uploadClient) Upload(ctx context.Context, mergedURL, title string) (*UploadResult, error) {
	if c.cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: upload endpoint is required", ErrProviderMisconfigured)
	}

	req := map[string]string{
		"asset_url": mergedURL,
		"title":     title,
	}
	var resp UploadResult
	if err := c.client.PostJSON(ctx, c.cfg.Endpoint, authHeaders(c.cfg.APIKey), req, &resp); err != nil {
		return nil, fmt.Errorf("uploading video: %w", err)
	}
	if resp.YouTubeID == "" {
		return nil, fmt.Errorf("uploading video: provider returned no video ID")
	}
	return &resp, nil
}

var _ Uploader = (*uploadClient)(nil)

// statsClient reads platform statistics for published videos.
type statsClient struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

// NewStatsClient creates a StatsProvider backed by the platform stats API.
func NewStatsClient(cfg config.ProviderConfig, logger *slog.Logger) *statsClient {
	return &statsClient{
		cfg:    cfg,
		client: newProviderClient(cfg, logger.With(slog.String("provider", "stats"))),
	}
}

func (c *statsClient) FetchStats(ctx context.Context, videoID string) (*PlatformStats, error) {
	if c.cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: stats endpoint is required", ErrProviderMisconfigured)
	}

	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/" + url.PathEscape(videoID)
	var resp PlatformStats
	if err := c.client.GetJSON(ctx, endpoint, authHeaders(c.cfg.APIKey), &resp); err != nil {
		return nil, fmt.Errorf("fetching stats for %s: %w", videoID, err)
	}
	return &resp, nil
}

var _ StatsProvider = (*statsClient)(nil)

// newsClient fetches top headlines from the news provider.
type newsClient struct {
	cfg    config.ProviderConfig
	client *httpclient.Client
}

// NewNewsClient creates a HeadlineFetcher backed by the news API.
func NewNewsClient(cfg config.ProviderConfig, logger *slog.Logger) *newsClient {
	return &newsClient{
		cfg:    cfg,
		client: newProviderClient(cfg, logger.With(slog.String("provider", "news"))),
	}
}

func (c *newsClient) TopHeadlines(ctx context.Context) ([]Article, error) {
	if c.cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: news endpoint is required", ErrProviderMisconfigured)
	}

	var resp struct {
		Articles []Article `json:"articles"`
	}
	if err := c.client.GetJSON(ctx, c.cfg.Endpoint, authHeaders(c.cfg.APIKey), &resp); err != nil {
		return nil, fmt.Errorf("fetching headlines: %w", err)
	}
	return resp.Articles, nil
}

var _ HeadlineFetcher = (*newsClient)(nil)
