package stages

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipforge/clipforge/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScriptClient_GenerateScript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "Storm shuts down airport")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "  Tonight, a storm...  "}},
			},
		})
	}))
	defer server.Close()

	client := NewScriptClient(config.ProviderConfig{
		Endpoint: server.URL,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		Timeout:  5 * time.Second,
	}, testLogger())

	script, err := client.GenerateScript(context.Background(), "Storm shuts down airport", "https://news.example.com/storm")
	require.NoError(t, err)
	assert.Equal(t, "Tonight, a storm...", script)
}

func TestScriptClient_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewScriptClient(config.ProviderConfig{
		Endpoint: server.URL,
		Model:    "gpt-4o-mini",
	}, testLogger())

	_, err := client.GenerateScript(context.Background(), "t", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
}

func TestScriptClient_Misconfigured(t *testing.T) {
	client := NewScriptClient(config.ProviderConfig{}, testLogger())

	_, err := client.GenerateScript(context.Background(), "t", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderMisconfigured)
}

func TestSpeechClient_Synthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "narration text", req["text"])
		assert.Equal(t, "nova", req["voice"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"audio_url":"https://assets.example.com/audio/1.mp3"}`))
	}))
	defer server.Close()

	client := NewSpeechClient(config.ProviderConfig{
		Endpoint: server.URL,
		Voice:    "nova",
	}, testLogger())

	audioURL, err := client.Synthesize(context.Background(), "narration text")
	require.NoError(t, err)
	assert.Equal(t, "https://assets.example.com/audio/1.mp3", audioURL)
}

func TestSpeechClient_MissingAudioURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewSpeechClient(config.ProviderConfig{Endpoint: server.URL}, testLogger())

	_, err := client.Synthesize(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio URL")
}

func TestUploadClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://assets.example.com/final/1.mp4", req["asset_url"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"youtube_url": "https://youtube.com/watch?v=abc123",
			"youtube_id": "abc123",
			"instagram_id": "ig456"
		}`))
	}))
	defer server.Close()

	client := NewUploadClient(config.ProviderConfig{Endpoint: server.URL}, testLogger())

	result, err := client.Upload(context.Background(), "https://assets.example.com/final/1.mp4", "Storm shuts down airport")
	require.NoError(t, err)
	assert.Equal(t, "abc123", result.YouTubeID)
	assert.Equal(t, "ig456", result.InstagramID)
	assert.Equal(t, "https://youtube.com/watch?v=abc123", result.YouTubeURL)
}

func TestStatsClient_FetchStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/abc123", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"views":1200,"likes":87,"comments":14}`))
	}))
	defer server.Close()

	client := NewStatsClient(config.ProviderConfig{Endpoint: server.URL + "/stats"}, testLogger())

	stats, err := client.FetchStats(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1200), stats.Views)
	assert.Equal(t, int64(87), stats.Likes)
	assert.Equal(t, int64(14), stats.Comments)
}

func TestNewsClient_TopHeadlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articles":[
			{"title":"Quake hits coastal region","url":"https://news.example.com/quake","source":"Example Wire"},
			{"title":"Markets rally","url":"https://news.example.com/markets","source":"Example Wire"}
		]}`))
	}))
	defer server.Close()

	client := NewNewsClient(config.ProviderConfig{Endpoint: server.URL}, testLogger())

	articles, err := client.TopHeadlines(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Quake hits coastal region", articles[0].Title)
}
