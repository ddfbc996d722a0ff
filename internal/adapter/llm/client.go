// Package llm adapts an OpenAI-compatible chat completions endpoint
// (Gemini's OpenAI surface by default) to classify.Completer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ErrEmptyCompletion is returned when the endpoint answers without choices.
var ErrEmptyCompletion = errors.New("completion has no choices")

const temperature = 0.1

// Client implements classify.Completer.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a chat completions client. Retries are left to the
// caller's retry policy, so the SDK's own retries are disabled.
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Complete sends prompt as a single user message and returns the reply text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
