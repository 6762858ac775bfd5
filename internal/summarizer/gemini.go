package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"textsummarizer/internal/domain"
)

// GeminiSummarizer calls the Gemini generate content API with the prompt as
// its sole input.
type GeminiSummarizer struct {
	client *genai.Client
}

// NewGeminiSummarizer builds the Gemini backend. A missing apiKey is not an
// error here: every Summarize call then fails with ErrMissingAPIKey. An empty
// baseURL selects the public endpoint.
func NewGeminiSummarizer(ctx context.Context, apiKey string, baseURL string) (*GeminiSummarizer, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &GeminiSummarizer{}, nil
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &GeminiSummarizer{client: client}, nil
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}

	if s.client == nil {
		return "", &BackendError{Provider: domain.ProviderGemini, Err: ErrMissingAPIKey}
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = domain.ProviderGemini.DefaultModel()
	}

	resp, err := s.client.Models.GenerateContent(ctx, model, genai.Text(BuildPrompt(req.Length, req.Text)), nil)
	if err != nil {
		return "", &BackendError{Provider: domain.ProviderGemini, Err: fmt.Errorf("generate content: %w", err)}
	}

	summary := strings.TrimSpace(responseText(resp))
	if summary == "" {
		return "", &BackendError{Provider: domain.ProviderGemini, Err: errors.New("output text is missing")}
	}

	return summary, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}

	return b.String()
}
