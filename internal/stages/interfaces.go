// Package stages defines the external provider interfaces the production
// pipeline calls, one per stage, plus HTTP implementations built on the
// resilient client in pkg/httpclient.
package stages

import (
	"context"
	"time"
)

// Article is one headline returned by the news provider.
type Article struct {
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Source      string     `json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// ScriptGenerator produces a narration script for an article.
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, title, sourceURL string) (string, error)
}

// SpeechSynthesizer converts a script into an audio asset.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, script string) (audioURL string, err error)
}

// VideoRenderer renders background video footage for a script.
type VideoRenderer interface {
	Render(ctx context.Context, title, script string) (videoURL string, err error)
}

// Merger combines an audio asset and a video asset into the final cut.
type Merger interface {
	Merge(ctx context.Context, audioURL, videoURL string) (mergedURL string, err error)
}

// UploadResult carries the platform identifiers of a published video.
type UploadResult struct {
	YouTubeURL  string `json:"youtube_url"`
	YouTubeID   string `json:"youtube_id"`
	InstagramID string `json:"instagram_id"`
}

// Uploader publishes the merged asset to the platforms.
type Uploader interface {
	Upload(ctx context.Context, mergedURL, title string) (*UploadResult, error)
}

// PlatformStats is a point-in-time statistics snapshot for a published video.
type PlatformStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// StatsProvider fetches platform statistics for a published video.
type StatsProvider interface {
	FetchStats(ctx context.Context, videoID string) (*PlatformStats, error)
}

// HeadlineFetcher fetches the current top headlines from the news provider.
type HeadlineFetcher interface {
	TopHeadlines(ctx context.Context) ([]Article, error)
}

// Clients bundles one client per pipeline stage.
type Clients struct {
	Script ScriptGenerator
	Speech SpeechSynthesizer
	Render VideoRenderer
	Merge  Merger
	Upload Uploader
	Stats  StatsProvider
	News   HeadlineFetcher
}
