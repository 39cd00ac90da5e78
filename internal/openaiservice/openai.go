package openaiservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"WellnessTips_V1.0/internal/wellness"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrModelNotConfigured = errors.New("openai api key is not configured")
	ErrEmptyCompletion    = errors.New("no content found in completion response")
)

// ClientConfig holds the settings for the chat completion call.
type ClientConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// Client wraps the OpenAI chat completion API. It performs a single attempt
// per call; the caller owns the timeout through ctx.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	log         *zerolog.Logger
}

// NewClient creates a client. It fails when no API key is given.
func NewClient(logger *zerolog.Logger, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrModelNotConfigured
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4
	}

	return &Client{
		client:      openai.NewClientWithConfig(apiCfg),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		log:         logger,
	}, nil
}

// Model returns the configured chat model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the prompts and returns the trimmed assistant message.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) wellness.Completion {
	c.log.Info().Str("model", c.model).Msg("Calling OpenAI chat completion...")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		MaxTokens:        c.maxTokens,
		Temperature:      c.temperature,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			c.log.Warn().Int("status", apiErr.HTTPStatusCode).Str("code", fmt.Sprint(apiErr.Code)).Msg("OpenAI API returned an error")
		}
		return wellness.Completion{Err: fmt.Errorf("chat completion failed: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return wellness.Completion{Err: ErrEmptyCompletion}
	}

	return wellness.Completion{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}
}
