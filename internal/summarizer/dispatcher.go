package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"textsummarizer/internal/domain"
)

// Dispatcher routes a request to the summariser registered for a provider.
type Dispatcher struct {
	mu       sync.RWMutex
	backends map[domain.Provider]Summarizer
	log      *slog.Logger
}

func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		backends: make(map[domain.Provider]Summarizer),
		log:      log,
	}
}

func (d *Dispatcher) Register(provider domain.Provider, s Summarizer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.backends[provider] = s
}

// Providers lists registered providers in display order.
func (d *Dispatcher) Providers() []domain.Provider {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var providers []domain.Provider
	for _, p := range domain.Providers() {
		if _, ok := d.backends[p]; ok {
			providers = append(providers, p)
		}
	}

	return slices.Clip(providers)
}

// Summarize calls the backend of provider exactly once. Failures of the
// backend come back as *BackendError and are never retried.
func (d *Dispatcher) Summarize(
	ctx context.Context,
	provider domain.Provider,
	req Request,
) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}

	d.mu.RLock()
	backend, ok := d.backends[provider]
	d.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	start := time.Now()

	summary, err := backend.Summarize(ctx, req)
	if err != nil {
		var backendErr *BackendError
		if !errors.As(err, &backendErr) {
			err = &BackendError{Provider: provider, Err: err}
		}

		d.log.WarnContext(ctx, "Summarization failed",
			"error", err,
			"provider", provider,
			"model", req.Model,
			"length", req.Length,
			"durationSeconds", time.Since(start).Seconds())

		return "", err
	}

	d.log.InfoContext(ctx, "Summarization is done",
		"provider", provider,
		"model", req.Model,
		"length", req.Length,
		"inputLen", len(req.Text),
		"summaryLen", len(summary),
		"durationSeconds", time.Since(start).Seconds())

	return summary, nil
}
