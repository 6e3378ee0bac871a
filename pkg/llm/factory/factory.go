package factory

import (
	"fmt"

	"eirybot-assistant-be/pkg/llm"
	"eirybot-assistant-be/pkg/llm/ollama"
	"eirybot-assistant-be/pkg/llm/openai"
)

// NewLLMProvider selects the completion backend. OpenAI is the production
// path; Ollama keeps local development free of API keys.
func NewLLMProvider(provider, model, openaiBaseURL, openaiKey, ollamaBaseURL string) (llm.LLMProvider, error) {
	switch provider {
	case "openai":
		return openai.NewOpenAIProvider(openaiBaseURL, openaiKey, model), nil
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
