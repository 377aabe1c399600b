package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini completes prompts with the Google Gen AI SDK.
type Gemini struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

type geminiConfig struct {
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// GeminiOption configures a Gemini client.
type GeminiOption func(*geminiConfig)

// WithGeminiModel replaces DefaultGeminiModel.
func WithGeminiModel(model string) GeminiOption {
	return func(c *geminiConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithGeminiBaseURL points the SDK at another endpoint.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(c *geminiConfig) {
		c.baseURL = baseURL
	}
}

// WithGeminiHTTPClient replaces the http.Client used by the SDK.
func WithGeminiHTTPClient(hc *http.Client) GeminiOption {
	return func(c *geminiConfig) {
		c.httpClient = hc
	}
}

// WithGeminiLogger sets the logger.
func WithGeminiLogger(logger *zap.Logger) GeminiOption {
	return func(c *geminiConfig) {
		c.logger = logger
	}
}

// NewGemini creates a Gemini API client authenticated with apiKey.
func NewGemini(ctx context.Context, apiKey string, options ...GeminiOption) (*Gemini, error) {
	cfg := &geminiConfig{model: DefaultGeminiModel, logger: zap.NewNop()}
	for _, option := range options {
		option(cfg)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.httpClient,
	}
	if cfg.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &Gemini{client: client, model: cfg.model, logger: cfg.logger}, nil
}

// Complete sends prompt as a single user turn.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	g.logger.Debug("gemini completion", zap.String("model", g.model), zap.Int("chars", len(text)))
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Gemini: %w", ErrEmptyCompletion)
	}
	return text, nil
}
