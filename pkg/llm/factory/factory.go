package factory

import (
	"fmt"
	"time"

	"ai-quiz-runner/pkg/llm"
	"ai-quiz-runner/pkg/llm/ollama"
	"ai-quiz-runner/pkg/llm/openai"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// NewLLMProvider builds a provider. For "openai" baseURL is the full chat
// completion URL and apiKey is sent as a bearer token.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName, timeout), nil
	case ProviderOpenAI:
		if baseURL == "" {
			return nil, fmt.Errorf("openai provider needs an endpoint url")
		}
		return openai.NewProvider(baseURL, apiKey, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
