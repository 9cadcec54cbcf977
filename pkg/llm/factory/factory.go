package factory

import (
	"fmt"

	"textcards-be/pkg/llm"
	"textcards-be/pkg/llm/ollama"
	"textcards-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewProvider(baseURL, modelName), nil
	case "openai", "volcano":
		if baseURL == "" {
			baseURL = "https://ark.cn-beijing.volces.com/api/v3"
		}
		if apiKey == "" {
			return nil, fmt.Errorf("llm provider %s requires an api key", providerType)
		}
		return openai.NewProvider(baseURL, apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
