package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProviderSummarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req api.GenerateRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err)
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "Test prompt", req.Prompt)
		require.NotNil(t, req.Stream)
		assert.False(t, *req.Stream)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(api.GenerateResponse{
			Model:    "llama3",
			Response: "The auth service rejected every downstream call.",
			Done:     true,
		})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, "llama3", 0.1)
	require.NoError(t, err)

	result, err := provider.Summarize(context.Background(), "Test prompt")
	require.NoError(t, err)
	assert.Equal(t, "The auth service rejected every downstream call.", result)
}

func TestOllamaProviderSummarizeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "model not loaded"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, "llama3", 0.1)
	require.NoError(t, err)

	_, err = provider.Summarize(context.Background(), "Test prompt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "API error")
}

func TestOllamaProviderEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(api.GenerateResponse{Model: "llama3", Done: true})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(server.URL, "llama3", 0.1)
	require.NoError(t, err)

	_, err = provider.Summarize(context.Background(), "Test prompt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestNewOllamaProviderDefaults(t *testing.T) {
	provider, err := NewOllamaProvider("", "", 0.1)
	require.NoError(t, err)
	assert.Equal(t, "ollama", provider.Name())
	assert.Equal(t, "llama3", provider.GetModel())
}

func TestNewOllamaProviderInvalidURL(t *testing.T) {
	_, err := NewOllamaProvider("http://[::1]:bad", "llama3", 0.1)
	assert.Error(t, err)
}
