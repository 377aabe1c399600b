package divreminder

import (
	"context"
	"errors"
	"fmt"

	"github.com/divreminder/divreminder/domain"
	"github.com/divreminder/divreminder/llm"
	"go.uber.org/zap"
)

// completerFactory builds the client of a provider from its api key.
type completerFactory func(ctx context.Context, provider llm.Provider, key, openAIModel string) (llm.Completer, error)

func newCompleter(ctx context.Context, provider llm.Provider, key, openAIModel string, logger *zap.Logger) (llm.Completer, error) {
	switch provider {
	case llm.ProviderOpenAI:
		return llm.NewOpenAI(key, openAIModel, llm.WithOpenAILogger(logger)), nil
	case llm.ProviderGemini:
		gemini, err := llm.NewGemini(ctx, key, llm.WithGeminiLogger(logger))
		if err != nil {
			return nil, err
		}
		return gemini, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// SendPrompt sends prompt to the provider using its stored api key and returns the answer.
// It returns a *llm.MissingKeyError when no key is stored for the provider.
func (app *App) SendPrompt(ctx context.Context, provider llm.Provider, prompt string) (string, error) {
	return app.sendPrompt(ctx, provider, prompt, func(ctx context.Context, provider llm.Provider, key, model string) (llm.Completer, error) {
		return newCompleter(ctx, provider, key, model, app.Logger)
	})
}

func (app *App) sendPrompt(ctx context.Context, provider llm.Provider, prompt string, factory completerFactory) (string, error) {
	repo, err := app.repo()
	if err != nil {
		return "", err
	}
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}

	apiKey, err := repo.GetApiKey(string(provider))
	if errors.Is(err, domain.ErrNotFound) || (err == nil && apiKey.Key == "") {
		return "", &llm.MissingKeyError{Provider: provider}
	}
	if err != nil {
		return "", fmt.Errorf("getting %s api key : %w", provider, err)
	}

	model := ""
	if provider == llm.ProviderOpenAI {
		if model, err = repo.GetOpenAIModel(); err != nil {
			return "", fmt.Errorf("getting openai model : %w", err)
		}
	}

	completer, err := factory(ctx, provider, apiKey.Key, model)
	if err != nil {
		return "", err
	}
	answer, err := completer.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	app.Logger.Debug("prompt answered", zap.String("provider", string(provider)), zap.Int("chars", len(answer)))
	return answer, nil
}
