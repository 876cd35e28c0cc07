package mdstream

import "context"

// Provider opens a text stream from a generation service.
type Provider interface {
	Stream(ctx context.Context, req Request) (Source, error)
}

// Request carries the prompt and generation parameters for one stream.
// The provider uses its own defaults when fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Prompt       string
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
