// Package imagegen renders image-generation prompts into hosted image URLs
// through pluggable providers.
package imagegen

import (
	"context"
	"fmt"
)

// Provider is the contract for any image generation backend.
type Provider interface {
	// GenerateImage renders one prompt and returns a hosted image URL.
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// New selects a provider by type. "demo" needs no credentials and returns
// deterministic placeholder URLs.
func New(providerType, baseURL, apiKey, model, size string) (Provider, error) {
	switch providerType {
	case "openai", "volcano":
		if apiKey == "" {
			return nil, fmt.Errorf("image provider %s requires an api key", providerType)
		}
		return NewOpenAIProvider(baseURL, apiKey, model, size), nil
	case "demo", "":
		return NewPlaceholderProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", providerType)
	}
}
