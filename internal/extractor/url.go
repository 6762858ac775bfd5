package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"mvdan.cc/xurls/v2"
)

//nolint:gochecknoglobals // Compiled once, read-only.
var webURLRe = xurls.Strict()

// FindURL returns the first http(s) URL found in text.
func FindURL(text string) (string, bool) {
	for _, candidate := range webURLRe.FindAllString(text, -1) {
		lower := strings.ToLower(candidate)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			return candidate, true
		}
	}

	return "", false
}

// IsOnlyURL reports whether text consists of a single URL and nothing else.
func IsOnlyURL(text string) (string, bool) {
	text = strings.TrimSpace(text)

	u, ok := FindURL(text)
	if !ok || u != text {
		return "", false
	}

	return u, true
}

// FromURL fetches a web page and returns the text of its paragraph elements
// joined by newlines. The page is decoded to UTF-8 using the charset of the
// Content-Type header or of the document itself. Network and parse failures
// are returned as *FetchError.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)

	body, contentType, err := e.get(ctx, rawURL, "FromURL")
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	decoded, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("decode charset: %w", err)}
	}

	doc, err := goquery.NewDocumentFromReader(decoded)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("create document from reader: %w", err)}
	}

	paragraphs := make([]string, 0, doc.Find("p").Length())
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, s.Text())
	})

	text := strings.Join(paragraphs, "\n")
	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}

	return text, nil
}

// Download reads a remote file fully into memory, refusing anything larger
// than the configured limit.
func (e *Extractor) Download(ctx context.Context, rawURL string) ([]byte, error) {
	body, _, err := e.get(ctx, strings.TrimSpace(rawURL), "Download")
	return body, err
}

// get returns the response body and its Content-Type header.
func (e *Extractor) get(ctx context.Context, rawURL string, operation string) ([]byte, string, error) {
	if rawURL == "" {
		return nil, "", errors.New("URL is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req) //nolint:gosec // URL is user supplied by design of the bot
	if err != nil {
		return nil, "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			e.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"operation", operation)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxDownloadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	if int64(len(body)) > e.maxDownloadBytes {
		return nil, "", fmt.Errorf("%w (limit = %d bytes)", ErrTooLarge, e.maxDownloadBytes)
	}

	return body, resp.Header.Get("Content-Type"), nil
}
