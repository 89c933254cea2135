package factory

import (
	"fmt"
	"time"

	"ai-answer-be/pkg/llm"
	"ai-answer-be/pkg/llm/ollama"
	"ai-answer-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
	switch providerType {
	case "openai":
		if modelName == "" {
			modelName = "gpt-4o-mini"
		}
		return openai.NewOpenAIProvider(apiKey, modelName, timeout), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
