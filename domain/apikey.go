package domain

// ApiKeyRepository defines the interface for storing user-supplied API keys of
// language-model providers.
type ApiKeyRepository interface {
	// UpsertApiKey stores the key for a provider, replacing any previous one.
	UpsertApiKey(apiKey *ApiKey) error

	// GetApiKey retrieves the key of a provider. It returns ErrNotFound if none is stored.
	GetApiKey(provider string) (*ApiKey, error)

	// GetApiKeys retrieves every stored key ordered by provider.
	GetApiKeys() ([]*ApiKey, error)

	// DeleteApiKey removes the key of a provider.
	DeleteApiKey(provider string) error

	// GetOpenAIModel returns the configured OpenAI model, or the default model if none is set.
	GetOpenAIModel() (string, error)

	// SetOpenAIModel stores the OpenAI model to use for prompts.
	SetOpenAIModel(model string) error
}

// ApiKey is a secret issued by a language-model provider.
type ApiKey struct {
	Provider string // Provider name, e.g. "openai" or "gemini".
	Key      string // The secret value.
}

const (
	// ProviderOpenAI is the provider name of OpenAI keys.
	ProviderOpenAI = "openai"
	// ProviderGemini is the provider name of Google Gemini keys.
	ProviderGemini = "gemini"
	// OpenAIModelProvider is the pseudo-provider under which the chosen OpenAI model is stored.
	OpenAIModelProvider = "openai_model"
	// DefaultOpenAIModel is used when no model has been stored.
	DefaultOpenAIModel = "gpt-4o-mini"
)
