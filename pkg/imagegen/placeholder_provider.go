package imagegen

import (
	"context"
	"fmt"
	"hash/fnv"
)

// PlaceholderProvider returns deterministic stock-photo URLs derived from the
// prompt. Used in demo mode and as the fallback when a real provider fails,
// so the pipeline stays demonstrable without credentials.
type PlaceholderProvider struct{}

var _ Provider = &PlaceholderProvider{}

func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{}
}

func (p *PlaceholderProvider) GenerateImage(_ context.Context, prompt string) (string, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	// 600x800 keeps the 3:4 portrait ratio the cards are designed for.
	return fmt.Sprintf("https://picsum.photos/600/800?random=%d", h.Sum32()%10000), nil
}
