package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/mdstream"
	"google.golang.org/genai"
)

// Interface compliance check.
var _ mdstream.Provider = (*Client)(nil)

// Client implements [mdstream.Provider] for the Google Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// Option configures a [Client].
type Option func(*Client)

// WithModel sets the model ID. Default is gemini-3.1-pro-preview.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// New creates a new Gemini [Client] with the given API key and options.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	c := &Client{
		client: gc,
		model:  defaultModel,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Stream sends a streaming request to the Gemini API and returns a
// [mdstream.Source] of answer text deltas.
func (c *Client) Stream(ctx context.Context, req mdstream.Request) (mdstream.Source, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("gemini: %w", mdstream.ErrEmptyPrompt)
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	seq := c.client.Models.GenerateContentStream(ctx, model, BuildContents(req), BuildConfig(req))
	return NewSource(ctx, seq), nil
}

// BuildContents returns the single user turn carrying the prompt.
// Exported for testing.
func BuildContents(req mdstream.Request) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: req.Prompt}},
	}}
}

// BuildConfig converts generation parameters to a genai config.
// Exported for testing.
func BuildConfig(req mdstream.Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	if req.Temperature != nil {
		temp := float32(*req.Temperature)
		config.Temperature = &temp
	}

	return config
}
