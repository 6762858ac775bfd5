package summarizer_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/summarizer"
)

type geminiRequest struct {
	path string
	body []byte
}

func newGeminiServer(t *testing.T, calls *atomic.Int32, body any) (*httptest.Server, <-chan geminiRequest) {
	t.Helper()

	requests := make(chan geminiRequest, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		requests <- geminiRequest{path: r.URL.Path, body: raw}

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)

	return srv, requests
}

func geminiResponse(parts ...string) map[string]any {
	p := make([]map[string]any, 0, len(parts))
	for _, text := range parts {
		p = append(p, map[string]any{"text": text})
	}

	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": p,
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestGeminiSummarizerGeneratesContent(t *testing.T) {
	var calls atomic.Int32
	srv, requests := newGeminiServer(t, &calls, geminiResponse("  Gemini ", "summary. \n"))

	s, err := summarizer.NewGeminiSummarizer(context.Background(), "test-gemini-key", srv.URL)
	require.NoError(t, err)

	summary, err := s.Summarize(context.Background(), summarizer.Request{
		Text:   "Long article.",
		Model:  "gemini-2.5-pro",
		Length: 100,
	})

	require.NoError(t, err)
	assert.Equal(t, "Gemini summary.", summary)
	assert.Equal(t, int32(1), calls.Load())

	got := <-requests
	assert.True(t, strings.HasSuffix(got.path, "models/gemini-2.5-pro:generateContent"), "path %q", got.path)

	var req struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	require.NoError(t, json.Unmarshal(got.body, &req))
	require.Len(t, req.Contents, 1)
	require.Len(t, req.Contents[0].Parts, 1)
	assert.Equal(t, "Summarize the following text in about 100 words:\n\nLong article.", req.Contents[0].Parts[0].Text)
}

func TestGeminiSummarizerEmptyOutputIsBackendError(t *testing.T) {
	var calls atomic.Int32
	srv, _ := newGeminiServer(t, &calls, map[string]any{"candidates": []any{}})

	s, err := summarizer.NewGeminiSummarizer(context.Background(), "test-gemini-key", srv.URL)
	require.NoError(t, err)

	_, err = s.Summarize(context.Background(), summarizer.Request{Text: "text", Model: "gemini-2.5-flash"})

	var backendErr *summarizer.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, domain.ProviderGemini, backendErr.Provider)
}

func TestGeminiSummarizerMissingKeyFailsAtCallTime(t *testing.T) {
	s, err := summarizer.NewGeminiSummarizer(context.Background(), " ", "")
	require.NoError(t, err)

	_, err = s.Summarize(context.Background(), summarizer.Request{Text: "text", Model: "gemini-2.5-flash"})

	var backendErr *summarizer.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.ErrorIs(t, err, summarizer.ErrMissingAPIKey)
}
