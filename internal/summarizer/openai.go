package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"textsummarizer/internal/domain"
)

const (
	GroqBaseURL  = "https://api.groq.com/openai/v1"
	LocalBaseURL = "http://localhost:11434/v1"
	LocalModel   = "llama3.2"

	LocalMinWords = 40
	LocalMaxWords = 150

	// Ollama and most local servers ignore the key but the client needs one.
	localPlaceholderAPIKey = "local"
	tokensPerWord          = 2
)

// OpenAIConfig configures a summariser speaking the OpenAI chat completions
// protocol.
type OpenAIConfig struct {
	Provider domain.Provider
	APIKey   string
	BaseURL  string
	// FixedModel, when set, is used for every request regardless of Request.Model.
	FixedModel string
	// MinWords and MaxWords, when set, bound the requested summary length.
	MinWords int
	MaxWords int
}

// OpenAISummarizer calls an OpenAI-compatible chat completions API.
type OpenAISummarizer struct {
	client     openai.Client
	provider   domain.Provider
	missingKey bool
	fixedModel string
	minWords   int
	maxWords   int
}

// NewOpenAISummarizer builds the backend. A missing API key is not an error
// here: every Summarize call then fails with ErrMissingAPIKey.
func NewOpenAISummarizer(cfg OpenAIConfig) *OpenAISummarizer {
	apiKey := strings.TrimSpace(cfg.APIKey)

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAISummarizer{
		client:     openai.NewClient(opts...),
		provider:   cfg.Provider,
		missingKey: apiKey == "",
		fixedModel: strings.TrimSpace(cfg.FixedModel),
		minWords:   cfg.MinWords,
		maxWords:   cfg.MaxWords,
	}
}

// NewGroqSummarizer builds the Groq backend. An empty baseURL selects the
// public Groq endpoint.
func NewGroqSummarizer(apiKey string, baseURL string) *OpenAISummarizer {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = GroqBaseURL
	}

	return NewOpenAISummarizer(OpenAIConfig{
		Provider: domain.ProviderGroq,
		APIKey:   apiKey,
		BaseURL:  baseURL,
	})
}

// NewLocalSummarizer builds the backend for a locally served model, pinned to
// one model and to fixed summary length bounds.
func NewLocalSummarizer(baseURL string, model string) *OpenAISummarizer {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = LocalBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = LocalModel
	}

	return NewOpenAISummarizer(OpenAIConfig{
		Provider:   domain.ProviderLocal,
		APIKey:     localPlaceholderAPIKey,
		BaseURL:    baseURL,
		FixedModel: model,
		MinWords:   LocalMinWords,
		MaxWords:   LocalMaxWords,
	})
}

// Summarize sends a fixed system instruction plus the user prompt and returns
// the trimmed content of the first choice.
func (s *OpenAISummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", ErrEmptyText
	}

	if s.missingKey {
		return "", &BackendError{Provider: s.provider, Err: ErrMissingAPIKey}
	}

	model := strings.TrimSpace(req.Model)
	if s.fixedModel != "" {
		model = s.fixedModel
	}
	if model == "" {
		return "", &BackendError{Provider: s.provider, Err: errors.New("model is empty")}
	}

	length := s.boundLength(req.Length)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(BuildPrompt(length, req.Text)),
		},
	}
	if s.maxWords > 0 {
		params.MaxTokens = openai.Int(int64(s.maxWords * tokensPerWord))
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &BackendError{Provider: s.provider, Err: fmt.Errorf("do request: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return "", &BackendError{Provider: s.provider, Err: errors.New("response has no choices")}
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", &BackendError{
			Provider: s.provider,
			Err:      fmt.Errorf("output text is missing (finishReason = %s)", resp.Choices[0].FinishReason),
		}
	}

	return summary, nil
}

func (s *OpenAISummarizer) boundLength(length int) int {
	if s.minWords > 0 && length < s.minWords {
		length = s.minWords
	}
	if s.maxWords > 0 && length > s.maxWords {
		length = s.maxWords
	}

	return length
}
