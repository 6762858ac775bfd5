package assistant_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textsummarizer/internal/assistant"
	"textsummarizer/internal/domain"
	"textsummarizer/internal/extractor"
	"textsummarizer/internal/session"
	"textsummarizer/internal/summarizer"
)

const chatID int64 = 100

type stubDispatcher struct {
	mu       sync.Mutex
	calls    int
	provider domain.Provider
	req      summarizer.Request
	summary  string
	err      error
}

func (d *stubDispatcher) Summarize(
	_ context.Context,
	provider domain.Provider,
	req summarizer.Request,
) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	d.provider = provider
	d.req = req

	return d.summary, d.err
}

func (d *stubDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.calls
}

func newAssistant(d assistant.Dispatcher) *assistant.Assistant {
	log := slog.New(slog.DiscardHandler)

	return assistant.New(
		session.NewStore(10, time.Hour),
		extractor.New(extractor.Options{}, log),
		d,
		log,
	)
}

func pageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestSetTextRejectsBlank(t *testing.T) {
	a := newAssistant(&stubDispatcher{})

	require.NoError(t, a.SetText(chatID, "kept"))

	assert.ErrorIs(t, a.SetText(chatID, "  \n"), assistant.ErrEmptyInput)
	assert.Equal(t, "kept", a.Text(chatID))
}

func TestFetchURLStoresParagraphs(t *testing.T) {
	srv := pageServer(t, `<html><body><p>A</p><p>B</p></body></html>`)
	a := newAssistant(&stubDispatcher{})

	text, err := a.FetchURL(context.Background(), chatID, srv.URL)

	require.NoError(t, err)
	assert.Equal(t, "A\nB", text)
	assert.Equal(t, "A\nB", a.Text(chatID))
}

func TestFetchURLEmptyURL(t *testing.T) {
	a := newAssistant(&stubDispatcher{})

	_, err := a.FetchURL(context.Background(), chatID, "   ")

	assert.ErrorIs(t, err, assistant.ErrEmptyInput)
}

func TestFetchURLFailureKeepsText(t *testing.T) {
	srv := pageServer(t, "")
	unreachable := srv.URL
	srv.Close()

	a := newAssistant(&stubDispatcher{})
	require.NoError(t, a.SetText(chatID, "previous"))

	text, err := a.FetchURL(context.Background(), chatID, unreachable)

	var fetchErr *extractor.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Empty(t, text)
	assert.Equal(t, "previous", a.Text(chatID))
}

func TestFetchURLWithoutContentKeepsText(t *testing.T) {
	srv := pageServer(t, `<html><body><p>   </p></body></html>`)

	a := newAssistant(&stubDispatcher{})
	require.NoError(t, a.SetText(chatID, "previous"))

	_, err := a.FetchURL(context.Background(), chatID, srv.URL)

	assert.ErrorIs(t, err, extractor.ErrNoContent)
	assert.Equal(t, "previous", a.Text(chatID))
}

func TestUploadFileTXT(t *testing.T) {
	a := newAssistant(&stubDispatcher{})

	text, err := a.UploadFile(context.Background(), chatID, "doc.txt", []byte("abc"))

	require.NoError(t, err)
	assert.Equal(t, "abc", text)
	assert.Equal(t, "abc", a.Text(chatID))
}

func TestUploadFileUnsupportedKeepsText(t *testing.T) {
	a := newAssistant(&stubDispatcher{})
	require.NoError(t, a.SetText(chatID, "previous"))

	_, err := a.UploadFile(context.Background(), chatID, "sheet.xlsx", []byte("data"))

	assert.ErrorIs(t, err, extractor.ErrUnsupportedExtension)
	assert.Equal(t, "previous", a.Text(chatID))
}

func TestMetrics(t *testing.T) {
	a := newAssistant(&stubDispatcher{})

	_, ok := a.Metrics(chatID)
	assert.False(t, ok)

	require.NoError(t, a.SetText(chatID, "Hello world. How are you?"))

	m, ok := a.Metrics(chatID)
	require.True(t, ok)
	assert.Equal(t, 5, m.Words)
	assert.Equal(t, 2, m.Sentences)

	require.NoError(t, a.SetText(chatID, "One."))

	m, ok = a.Metrics(chatID)
	require.True(t, ok)
	assert.Equal(t, 1, m.Words)
}

func TestSummarizeEmptyTextNeverCallsBackend(t *testing.T) {
	d := &stubDispatcher{summary: "unused"}
	a := newAssistant(d)

	_, err := a.Summarize(context.Background(), chatID, domain.DefaultSettings(1))
	assert.ErrorIs(t, err, assistant.ErrEmptyInput)

	_, err = a.UploadFile(context.Background(), chatID, "blank.txt", []byte("   "))
	assert.ErrorIs(t, err, extractor.ErrNoContent)

	_, err = a.Summarize(context.Background(), chatID, domain.DefaultSettings(1))
	assert.ErrorIs(t, err, assistant.ErrEmptyInput)

	assert.Zero(t, d.callCount())
}

func TestSummarizePassesSettings(t *testing.T) {
	d := &stubDispatcher{summary: "short"}
	a := newAssistant(d)
	require.NoError(t, a.SetText(chatID, "Some long text."))

	summary, err := a.Summarize(context.Background(), chatID, domain.Settings{
		UserID:        1,
		Provider:      domain.ProviderGroq,
		Model:         "groq/compound",
		SummaryLength: 200,
	})

	require.NoError(t, err)
	assert.Equal(t, "short", summary)
	assert.Equal(t, 1, d.callCount())
	assert.Equal(t, domain.ProviderGroq, d.provider)
	assert.Equal(t, summarizer.Request{Text: "Some long text.", Model: "groq/compound", Length: 200}, d.req)
}

func TestSummarizePropagatesBackendError(t *testing.T) {
	backendErr := &summarizer.BackendError{Provider: domain.ProviderGemini, Err: errors.New("unauthorized")}
	a := newAssistant(&stubDispatcher{err: backendErr})
	require.NoError(t, a.SetText(chatID, "text"))

	_, err := a.Summarize(context.Background(), chatID, domain.DefaultSettings(1))

	var got *summarizer.BackendError
	require.ErrorAs(t, err, &got)
	assert.Same(t, backendErr, got)
}

func TestClearResetsSession(t *testing.T) {
	a := newAssistant(&stubDispatcher{})
	require.NoError(t, a.SetText(chatID, "text"))

	a.Clear(chatID)

	assert.Empty(t, a.Text(chatID))
	_, ok := a.Metrics(chatID)
	assert.False(t, ok)
}
