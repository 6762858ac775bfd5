// Package assistant runs one user interaction against the chat's session:
// extraction into the session, metrics, and summarisation of the session text.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"textsummarizer/internal/domain"
	"textsummarizer/internal/extractor"
	"textsummarizer/internal/session"
	"textsummarizer/internal/summarizer"
	"textsummarizer/internal/textstats"
)

// ErrEmptyInput reports a user action without input: no text to store, no URL
// to fetch, or nothing stored to summarise.
var ErrEmptyInput = errors.New("input is empty")

type Extractor interface {
	FromURL(ctx context.Context, rawURL string) (string, error)
	FromFile(ctx context.Context, name string, data []byte) (string, error)
}

type Dispatcher interface {
	Summarize(ctx context.Context, provider domain.Provider, req summarizer.Request) (string, error)
}

type Assistant struct {
	sessions   *session.Store
	extractor  Extractor
	dispatcher Dispatcher
	log        *slog.Logger
}

func New(
	sessions *session.Store,
	e Extractor,
	d Dispatcher,
	log *slog.Logger,
) *Assistant {
	return &Assistant{
		sessions:   sessions,
		extractor:  e,
		dispatcher: d,
		log:        log,
	}
}

// SetText stores pasted text as the document text of chatID.
func (a *Assistant) SetText(chatID int64, text string) error {
	text = extractor.FromText(text)
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}

	a.sessions.Get(chatID).Set(text)

	return nil
}

// FetchURL replaces the document text with the paragraphs of a web page. On
// any failure the stored text is left as it was.
func (a *Assistant) FetchURL(ctx context.Context, chatID int64, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrEmptyInput
	}

	text, err := a.extractor.FromURL(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("extract from URL: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", extractor.ErrNoContent
	}

	a.sessions.Get(chatID).Set(text)

	a.log.InfoContext(ctx, "Document text is fetched",
		"chatID", chatID,
		"url", rawURL,
		"textLen", len(text))

	return text, nil
}

// UploadFile replaces the document text with the content of an uploaded file.
// On any failure the stored text is left as it was.
func (a *Assistant) UploadFile(ctx context.Context, chatID int64, name string, data []byte) (string, error) {
	text, err := a.extractor.FromFile(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("extract from file: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", extractor.ErrNoContent
	}

	a.sessions.Get(chatID).Set(text)

	a.log.InfoContext(ctx, "Document text is extracted from file",
		"chatID", chatID,
		"fileName", name,
		"fileSize", len(data),
		"textLen", len(text))

	return text, nil
}

func (a *Assistant) Text(chatID int64) string {
	return a.sessions.Get(chatID).Get()
}

// Metrics computes metrics of the current document text. It reports false
// when there is no text.
func (a *Assistant) Metrics(chatID int64) (domain.Metrics, bool) {
	text := a.Text(chatID)
	if text == "" {
		return domain.Metrics{}, false
	}

	return textstats.Compute(text), true
}

// Summarize summarises the current document text with the backend selected in
// settings. Empty text never reaches a backend. Backend failures are returned
// untouched for the caller to report.
func (a *Assistant) Summarize(ctx context.Context, chatID int64, settings domain.Settings) (string, error) {
	text := a.Text(chatID)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}

	settings = settings.Normalize()

	return a.dispatcher.Summarize(ctx, settings.Provider, summarizer.Request{
		Text:   text,
		Model:  settings.Model,
		Length: settings.SummaryLength,
	})
}

// Clear returns the chat to its initial empty state.
func (a *Assistant) Clear(chatID int64) {
	a.sessions.Reset(chatID)
}
