// Package ai provides factory functions for creating LLM service adapters.
package ai

import (
	"fmt"
	"time"

	"github.com/custodia-labs/bidflow/internal/adapters/driven/llm"
	anthropicllm "github.com/custodia-labs/bidflow/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/bidflow/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/bidflow/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/bidflow/internal/core/domain"
	"github.com/custodia-labs/bidflow/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateLLMService creates the appropriate LLM service based on settings,
// paced to settings.RequestsPerMinute when set.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc = createOllamaLLM(settings)

	case domain.AIProviderGroq, domain.AIProviderOpenAI:
		svc, err = createOpenAILLM(settings)

	case domain.AIProviderAnthropic:
		svc, err = createAnthropicLLM(settings)

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}

	return llm.NewLimited(svc, settings.RequestsPerMinute), nil
}

// createOllamaLLM creates an Ollama LLM service.
func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Temperature: &settings.Temperature,
		Timeout:     settings.Timeout,
	})
}

// createOpenAILLM creates an OpenAI-compatible LLM service. Groq is served
// through its OpenAI-compatible endpoint.
func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	baseURL := settings.BaseURL
	if baseURL == "" && settings.Provider == domain.AIProviderGroq {
		baseURL = openaillm.GroqBaseURL
	}
	return openaillm.NewLLMService(openaillm.LLMConfig{
		Provider:    settings.Provider.String(),
		APIKey:      settings.APIKey,
		BaseURL:     baseURL,
		Model:       settings.Model,
		Temperature: &settings.Temperature,
		Timeout:     settings.Timeout,
	})
}

// createAnthropicLLM creates an Anthropic LLM service.
func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:      settings.APIKey,
		BaseURL:     settings.BaseURL,
		Model:       settings.Model,
		Temperature: &settings.Temperature,
		Timeout:     settings.Timeout,
	})
}
