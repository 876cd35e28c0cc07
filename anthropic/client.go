package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fwojciec/mdstream"
)

// Interface compliance check.
var _ mdstream.Provider = (*Client)(nil)

// Client implements [mdstream.Provider] for the Anthropic Messages API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL sets the API base URL. Useful for testing with httptest.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a new Anthropic [Client] with the given API key and options.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Stream sends the prompt as a single user message and returns a
// [mdstream.Source] yielding the response's text deltas.
func (c *Client) Stream(ctx context.Context, req mdstream.Request) (mdstream.Source, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("anthropic: %w", mdstream.ErrEmptyPrompt)
	}
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, parseHTTPError(resp)
	}
	return newSource(ctx, resp.Body), nil
}

// newHTTPRequest builds the authenticated POST for a streaming Messages call.
func (c *Client) newHTTPRequest(ctx context.Context, req mdstream.Request) (*http.Request, error) {
	body, err := buildRequestBody(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	h := httpReq.Header
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "text/event-stream")
	h.Set("X-Api-Key", c.apiKey)
	h.Set("Anthropic-Version", apiVersion)
	return httpReq, nil
}

func buildRequestBody(req mdstream.Request) ([]byte, error) {
	model := req.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return json.Marshal(apiRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Stream:    true,
		System:    req.SystemPrompt,
		Messages: []apiMessage{{
			Role:    "user",
			Content: []apiContentBlock{{Type: "text", Text: req.Prompt}},
		}},
		Temperature: req.Temperature,
	})
}

// parseHTTPError turns a non-200 response into an error, preferring the
// API's typed error body over the raw payload.
func parseHTTPError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("anthropic: HTTP %d: reading body: %w", resp.StatusCode, err)
	}
	var apiErr apiErrorResponse
	if json.Unmarshal(body, &apiErr) != nil || apiErr.Error.Type == "" {
		return fmt.Errorf("anthropic: HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return fmt.Errorf("anthropic: HTTP %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
}
