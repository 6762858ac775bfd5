package domain

import (
	"slices"
	"strings"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderGroq   Provider = "groq"
	ProviderLocal  Provider = "local"
)

const (
	MinSummaryLength     = 50
	MaxSummaryLength     = 500
	SummaryLengthStep    = 50
	DefaultSummaryLength = 150

	DefaultProvider = ProviderGemini
)

//nolint:gochecknoglobals // Catalogue meant to be immutable.
var providerModels = map[Provider][]string{
	ProviderGemini: {
		"gemini-2.5-flash",
		"gemini-2.5-pro",
		"gemini-2.5-flash-lite",
		"gemini-2.0-flash",
		"gemini-2.0-flash-lite",
	},
	ProviderGroq: {
		"llama-3.1-8b-instant",
		"groq/compound",
		"groq/compound-mini",
	},
}

// Providers lists the selectable providers in display order.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderGroq, ProviderLocal}
}

func ParseProvider(raw string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(raw)))
	if !slices.Contains(Providers(), p) {
		return "", false
	}

	return p, true
}

func (p Provider) Title() string {
	switch p {
	case ProviderGemini:
		return "Gemini"
	case ProviderGroq:
		return "Groq"
	case ProviderLocal:
		return "Local"
	default:
		return string(p)
	}
}

// Models returns the selectable models of a provider. The local provider runs
// one configured model, so its list is empty and the model is resolved by the
// backend itself.
func (p Provider) Models() []string {
	return slices.Clone(providerModels[p])
}

func (p Provider) DefaultModel() string {
	models := providerModels[p]
	if len(models) == 0 {
		return ""
	}

	return models[0]
}

func (p Provider) HasModel(model string) bool {
	if p == ProviderLocal {
		return true
	}

	return slices.Contains(providerModels[p], model)
}

// SummaryLengths returns every allowed target length, ascending.
func SummaryLengths() []int {
	lengths := make([]int, 0, (MaxSummaryLength-MinSummaryLength)/SummaryLengthStep+1)
	for l := MinSummaryLength; l <= MaxSummaryLength; l += SummaryLengthStep {
		lengths = append(lengths, l)
	}

	return lengths
}

func ValidSummaryLength(length int) bool {
	return length >= MinSummaryLength &&
		length <= MaxSummaryLength &&
		(length-MinSummaryLength)%SummaryLengthStep == 0
}

// Settings is the backend selection of one user.
type Settings struct {
	UserID        int64
	Provider      Provider
	Model         string
	SummaryLength int
}

func DefaultSettings(userID int64) Settings {
	return Settings{
		UserID:        userID,
		Provider:      DefaultProvider,
		Model:         DefaultProvider.DefaultModel(),
		SummaryLength: DefaultSummaryLength,
	}
}

// Normalize replaces every invalid field with its default.
func (s Settings) Normalize() Settings {
	if _, ok := ParseProvider(string(s.Provider)); !ok {
		s.Provider = DefaultProvider
	}

	s.Model = strings.TrimSpace(s.Model)
	if !s.Provider.HasModel(s.Model) {
		s.Model = s.Provider.DefaultModel()
	}

	if !ValidSummaryLength(s.SummaryLength) {
		s.SummaryLength = DefaultSummaryLength
	}

	return s
}

type Metrics struct {
	Chars      int
	Words      int
	Sentences  int
	ReadingMin float64
}
