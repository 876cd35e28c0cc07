package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/anthropic"
	"github.com/fwojciec/mdstream/gemini"
)

// resolveProvider selects and constructs the provider. Keys are passed in
// as parameters; env is only read by resolveConfig.
func resolveProvider(ctx context.Context, providerName, apiKeyFlag, anthropicKey, geminiKey string) (mdstream.Provider, error) {
	provider := providerName

	// Auto-detect from keys if no provider is named.
	if provider == "" {
		hasAnthropic := anthropicKey != ""
		hasGemini := geminiKey != ""
		switch {
		case hasAnthropic && hasGemini:
			return nil, fmt.Errorf("multiple API keys found (ANTHROPIC_API_KEY, GEMINI_API_KEY): use --provider to select")
		case hasAnthropic:
			provider = "anthropic"
		case hasGemini:
			provider = "gemini"
		default:
			return nil, fmt.Errorf("no API key found: set ANTHROPIC_API_KEY or GEMINI_API_KEY (or use --provider and --api-key)")
		}
	}

	// Explicit flag overrides env and config.
	key := apiKeyFlag
	switch provider {
	case "anthropic":
		if key == "" {
			key = anthropicKey
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key or environment variable)")
		}
		return anthropic.New(key), nil
	case "gemini":
		if key == "" {
			key = geminiKey
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key or environment variable)")
		}
		client, err := gemini.New(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"anthropic\" or \"gemini\"", provider)
	}
}
