package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"textsummarizer/internal/domain"
)

const systemPrompt = "You are a helpful and concise AI summarizer."

var (
	ErrEmptyText       = errors.New("text is empty")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrMissingAPIKey   = errors.New("API key is missing")
)

// Request describes the payload for a summary request.
type Request struct {
	// Text contains the original plain text to summarise.
	Text string
	// Model identifies the provider model. Backends bound to one model ignore it.
	Model string
	// Length is the target summary length in words.
	Length int
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// BackendError reports a failure of a summarisation backend: auth, quota,
// network or an unusable response.
type BackendError struct {
	Provider domain.Provider
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// BuildPrompt combines the target length and the text into one instruction.
func BuildPrompt(length int, text string) string {
	var b strings.Builder
	b.Grow(len(text) + 64)
	fmt.Fprintf(&b, "Summarize the following text in about %d words:\n\n", length)
	b.WriteString(text)

	return b.String()
}
