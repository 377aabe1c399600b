// Package llm sends free-text prompts to hosted language models.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider names a hosted model vendor. The values double as api key providers.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// ErrEmptyCompletion is returned when the model answers without any text.
var ErrEmptyCompletion = errors.New("no completion found in API response")

// Completer answers a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ParseProvider accepts a provider name in any case.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(name))) {
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	case ProviderGemini:
		return ProviderGemini, nil
	default:
		return "", fmt.Errorf("unknown provider %q, expected %q or %q", name, ProviderOpenAI, ProviderGemini)
	}
}

// DisplayName is the vendor name used in messages.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Gemini"
	default:
		return string(p)
	}
}

// MissingKeyError reports that no api key is stored for a provider.
type MissingKeyError struct {
	Provider Provider
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("%s API key not set", e.Provider.DisplayName())
}
