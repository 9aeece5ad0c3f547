// Package llm is the model API boundary. Models are reached through an
// OpenAI-compatible chat completions endpoint (Ollama serves one at /v1),
// and transport failures are mapped onto a small typed taxonomy so callers
// can tell a configuration error from a slow model.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// ChatResult carries the generated text plus token and timing metadata.
type ChatResult struct {
	Text     string
	Tokens   int
	Duration time.Duration
}

// TokensPerSec is the generation speed, or 0 when metadata is unavailable.
func (r *ChatResult) TokensPerSec() float64 {
	if r.Duration <= 0 || r.Tokens <= 0 {
		return 0
	}
	return float64(r.Tokens) / r.Duration.Seconds()
}

var (
	ErrModelNotFound = errors.New("model not found")
	ErrConnection    = errors.New("connection failed")
	ErrTimedOut      = errors.New("request timed out")
)

// Client requests one model turn for a conversation.
type Client interface {
	Chat(ctx context.Context, model string, messages []Message) (*ChatResult, error)
}

// OllamaClient talks to an Ollama server via its OpenAI-compatible API.
type OllamaClient struct {
	client  *openai.Client
	baseURL string
	timeout time.Duration
}

func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	cfg := openai.DefaultConfig("ollama")
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	return &OllamaClient{
		client:  openai.NewClientWithConfig(cfg),
		baseURL: baseURL,
		timeout: timeout,
	}
}

func (c *OllamaClient) Chat(ctx context.Context, model string, messages []Message) (*ChatResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, c.classify(err, model)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model %s returned no choices", model)
	}

	return &ChatResult{
		Text:     resp.Choices[0].Message.Content,
		Tokens:   resp.Usage.CompletionTokens,
		Duration: time.Since(start),
	}, nil
}

func (c *OllamaClient) classify(err error, model string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: model %s after %s", ErrTimedOut, model, c.timeout)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 404 {
		return fmt.Errorf("%w: %q at %s", ErrModelNotFound, model, c.baseURL)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist"):
		return fmt.Errorf("%w: %q at %s", ErrModelNotFound, model, c.baseURL)
	case strings.Contains(msg, "connection") || strings.Contains(msg, "refused") || strings.Contains(msg, "no such host"):
		return fmt.Errorf("%w: %s: %v", ErrConnection, c.baseURL, err)
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return fmt.Errorf("%w: model %s after %s", ErrTimedOut, model, c.timeout)
	}
	return fmt.Errorf("chat completion: %w", err)
}
