package extractor

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"code.sajari.com/docconv"
)

// Strategy extracts plain text from the raw bytes of one file type.
type Strategy func(ctx context.Context, data []byte) (string, error)

func defaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		"txt":  extractTXT,
		"pdf":  extractPDF,
		"docx": extractDOCX,
	}
}

// FromFile extracts text from an uploaded file, choosing the strategy by the
// declared extension of name.
func (e *Extractor) FromFile(ctx context.Context, name string, data []byte) (string, error) {
	ext := normalizeExtension(filepath.Ext(strings.TrimSpace(name)))

	strategy, ok := e.strategies[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	text, err := strategy(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", ext, err)
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrNoContent
	}

	return text, nil
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func extractTXT(_ context.Context, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}

	return string(data), nil
}

// extractPDF returns the text of every page. docconv runs pdftotext with
// -nopgbrk so pages are not separated by form feeds.
func extractPDF(ctx context.Context, data []byte) (string, error) {
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("convert PDF: %w", err)
	}

	if err = ctx.Err(); err != nil {
		return "", err
	}

	return body, nil
}
