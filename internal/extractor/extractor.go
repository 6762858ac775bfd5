// Package extractor turns pasted text, web pages and uploaded documents into
// plain document text.
package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"time"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	DefaultFetchTimeout     = 30 * time.Second
	DefaultMaxDownloadBytes = 20 << 20
)

var (
	// ErrNoContent reports an extraction that produced empty or whitespace-only
	// text. Callers keep the previous document text.
	ErrNoContent            = errors.New("no readable content")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrInvalidEncoding      = errors.New("text is not valid UTF-8")
	ErrTooLarge             = errors.New("file exceeds size limit")
)

// FetchError reports a failed network fetch of a user supplied URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Options struct {
	FetchTimeout     time.Duration
	MaxDownloadBytes int64
	// HTTPClient overrides the client built from FetchTimeout.
	HTTPClient *http.Client
}

type Extractor struct {
	client           *http.Client
	maxDownloadBytes int64
	strategies       map[string]Strategy
	log              *slog.Logger
}

func New(opts Options, log *slog.Logger) *Extractor {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.FetchTimeout
		if timeout <= 0 {
			timeout = DefaultFetchTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	maxDownloadBytes := opts.MaxDownloadBytes
	if maxDownloadBytes <= 0 {
		maxDownloadBytes = DefaultMaxDownloadBytes
	}

	return &Extractor{
		client:           client,
		maxDownloadBytes: maxDownloadBytes,
		strategies:       defaultStrategies(),
		log:              log,
	}
}

// Register binds an extraction strategy to a file extension, replacing any
// previous one.
func (e *Extractor) Register(ext string, s Strategy) {
	e.strategies[normalizeExtension(ext)] = s
}

// Extensions lists supported file extensions, sorted.
func (e *Extractor) Extensions() []string {
	return slices.Sorted(maps.Keys(e.strategies))
}

// FromText returns pasted text unchanged.
func FromText(text string) string {
	return text
}
