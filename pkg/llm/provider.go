// Package llm defines the interfaces and factories for connecting to various
// Large Language Models used to summarize RCA hypotheses.
package llm

import (
	"context"
	"fmt"

	"spansight/internal/config"
)

// Provider establishes the common contract for all supported LLM integrations.
type Provider interface {
	Summarize(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ProviderType represents a supported backend LLM provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOllama    ProviderType = "ollama"
)

// systemPrompt frames every summarization request. The engine replaces a
// hypothesis's template summary verbatim with whatever the model returns, so
// the instruction insists on a single plain sentence.
const systemPrompt = "You are an SRE assistant summarizing root cause hypotheses for failed AI agent runs. " +
	"Respond with exactly one concise plain-text sentence and nothing else."

// NewProvider evaluates the configuration to instantiate and route to the
// correct LLM backend implementation.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch ProviderType(cfg.ProviderType()) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.MaxTokens)
	case ProviderOllama:
		return NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
