package summarizer_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/summarizer"
)

type stubSummarizer struct {
	mu      sync.Mutex
	calls   int
	last    summarizer.Request
	summary string
	err     error
}

func (s *stubSummarizer) Summarize(_ context.Context, req summarizer.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = req

	return s.summary, s.err
}

func (s *stubSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func newDispatcher() *summarizer.Dispatcher {
	return summarizer.NewDispatcher(slog.New(slog.DiscardHandler))
}

func TestBuildPrompt(t *testing.T) {
	assert.Equal(t,
		"Summarize the following text in about 200 words:\n\nHello.",
		summarizer.BuildPrompt(200, "Hello."))
}

func TestDispatcherRoutesToProvider(t *testing.T) {
	gemini := &stubSummarizer{summary: "from gemini"}
	groq := &stubSummarizer{summary: "from groq"}

	d := newDispatcher()
	d.Register(domain.ProviderGemini, gemini)
	d.Register(domain.ProviderGroq, groq)

	req := summarizer.Request{Text: "text", Model: "groq/compound", Length: 250}
	summary, err := d.Summarize(context.Background(), domain.ProviderGroq, req)

	require.NoError(t, err)
	assert.Equal(t, "from groq", summary)
	assert.Equal(t, 1, groq.callCount())
	assert.Equal(t, req, groq.last)
	assert.Zero(t, gemini.callCount())
}

func TestDispatcherUnknownProvider(t *testing.T) {
	gemini := &stubSummarizer{summary: "x"}

	d := newDispatcher()
	d.Register(domain.ProviderGemini, gemini)

	_, err := d.Summarize(context.Background(), domain.ProviderLocal, summarizer.Request{Text: "text"})

	assert.ErrorIs(t, err, summarizer.ErrUnknownProvider)
	assert.Zero(t, gemini.callCount())
}

func TestDispatcherEmptyTextNeverCallsBackend(t *testing.T) {
	gemini := &stubSummarizer{summary: "x"}

	d := newDispatcher()
	d.Register(domain.ProviderGemini, gemini)

	for _, text := range []string{"", "   ", "\n\t"} {
		_, err := d.Summarize(context.Background(), domain.ProviderGemini, summarizer.Request{Text: text})
		assert.ErrorIs(t, err, summarizer.ErrEmptyText)
	}

	assert.Zero(t, gemini.callCount())
}

func TestDispatcherWrapsPlainErrors(t *testing.T) {
	errQuota := errors.New("quota exceeded")

	d := newDispatcher()
	d.Register(domain.ProviderGroq, &stubSummarizer{err: errQuota})

	_, err := d.Summarize(context.Background(), domain.ProviderGroq, summarizer.Request{Text: "text"})

	var backendErr *summarizer.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, domain.ProviderGroq, backendErr.Provider)
	assert.ErrorIs(t, err, errQuota)
}

func TestDispatcherKeepsBackendErrors(t *testing.T) {
	original := &summarizer.BackendError{Provider: domain.ProviderGemini, Err: errors.New("auth")}

	d := newDispatcher()
	d.Register(domain.ProviderGemini, &stubSummarizer{err: original})

	_, err := d.Summarize(context.Background(), domain.ProviderGemini, summarizer.Request{Text: "text"})

	var backendErr *summarizer.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Same(t, original, backendErr)
}

func TestDispatcherProvidersInDisplayOrder(t *testing.T) {
	d := newDispatcher()
	d.Register(domain.ProviderLocal, &stubSummarizer{})
	d.Register(domain.ProviderGemini, &stubSummarizer{})

	assert.Equal(t, []domain.Provider{domain.ProviderGemini, domain.ProviderLocal}, d.Providers())
}
