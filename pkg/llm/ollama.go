package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaProvider implements Provider for Ollama (local models)
type OllamaProvider struct {
	client      *api.Client
	model       string
	temperature float64
}

// NewOllamaProvider creates a new Ollama provider
func NewOllamaProvider(rawURL, model string, temperature float64) (*OllamaProvider, error) {
	if rawURL == "" {
		rawURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3"
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL %q: %w", rawURL, err)
	}

	return &OllamaProvider{
		client: api.NewClient(base, &http.Client{
			Timeout: 120 * time.Second,
		}),
		model:       model,
		temperature: temperature,
	}, nil
}

// Summarize sends a prompt to Ollama and returns the generated text.
func (p *OllamaProvider) Summarize(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  p.model,
		Prompt: prompt,
		System: systemPrompt,
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": p.temperature,
		},
	}

	var sb strings.Builder
	err := p.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty response from Ollama")
	}
	return sb.String(), nil
}

// Name returns the provider name
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// GetModel returns the model name
func (p *OllamaProvider) GetModel() string {
	return p.model
}
