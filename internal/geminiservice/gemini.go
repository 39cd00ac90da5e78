package geminiservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"WellnessTips_V1.0/internal/wellness"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// --- Gemini API Configuration ---
const defaultModel = "gemini-2.5-flash"

var (
	ErrModelNotConfigured = errors.New("gemini api key is not configured")
	ErrNoContent          = errors.New("no content found in Gemini response")
)

// ClientConfig holds the settings for the generateContent call.
type ClientConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// Client calls the Gemini generateContent endpoint once per request.
type Client struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	log         *zerolog.Logger
}

// NewClient creates a Gemini client. It fails when no API key is given.
func NewClient(ctx context.Context, logger *zerolog.Logger, cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrModelNotConfigured
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		client:      client,
		model:       model,
		maxTokens:   int32(cfg.MaxTokens),
		temperature: cfg.Temperature,
		log:         logger,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

// Complete sends the system instruction and user prompt and returns the
// concatenated text parts of the first candidate.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) wellness.Completion {
	c.log.Info().Str("model", c.model).Msg("Calling Gemini API...")

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(userPrompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		MaxOutputTokens:   c.maxTokens,
		Temperature:       genai.Ptr(c.temperature),
	})
	if err != nil {
		return wellness.Completion{Err: fmt.Errorf("generate content failed: %w", err)}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return wellness.Completion{Err: ErrNoContent}
	}

	return wellness.Completion{Text: text}
}
