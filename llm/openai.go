package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultOpenAIBaseURL is the public OpenAI API.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAI completes prompts with the chat completions endpoint.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	logger     *zap.Logger
}

// OpenAIOption configures an OpenAI client.
type OpenAIOption func(*OpenAI)

// WithOpenAIBaseURL replaces DefaultOpenAIBaseURL.
func WithOpenAIBaseURL(baseURL string) OpenAIOption {
	return func(o *OpenAI) {
		o.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithOpenAIHTTPClient replaces the http.Client.
func WithOpenAIHTTPClient(c *http.Client) OpenAIOption {
	return func(o *OpenAI) {
		o.httpClient = c
	}
}

// WithMaxTokens bounds the length of the answer. Zero leaves it to the model.
func WithMaxTokens(n int) OpenAIOption {
	return func(o *OpenAI) {
		o.maxTokens = n
	}
}

// WithOpenAILogger sets the logger.
func WithOpenAILogger(logger *zap.Logger) OpenAIOption {
	return func(o *OpenAI) {
		o.logger = logger
	}
}

// NewOpenAI returns a client for model authenticated with apiKey.
func NewOpenAI(apiKey, model string, options ...OpenAIOption) *OpenAI {
	o := &OpenAI{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    DefaultOpenAIBaseURL,
		apiKey:     apiKey,
		model:      model,
		logger:     zap.NewNop(),
	}
	for _, option := range options {
		option(o)
	}
	return o
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends prompt as a single user message.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:               o.model,
		Messages:            []chatMessage{{Role: "user", Content: prompt}},
		MaxCompletionTokens: o.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	start := time.Now()
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenAI request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading OpenAI response: %w", err)
	}
	o.logger.Debug("openai completion",
		zap.String("model", o.model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error: %s", strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding OpenAI response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("OpenAI API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("OpenAI: %w", ErrEmptyCompletion)
	}
	return parsed.Choices[0].Message.Content, nil
}
