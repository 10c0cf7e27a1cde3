// Package config provides configuration structures and loading logic for SpanSight.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the root configuration structure for the SpanSight service.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Store     StoreConfig     `mapstructure:"store"`
}

// AppConfig defines application-level settings such as host and port.
type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// SynthesisConfig defines the tunables of the RCA synthesis engine.
type SynthesisConfig struct {
	MaxHypotheses          int     `mapstructure:"max_hypotheses"`
	MinConfidence          float64 `mapstructure:"min_confidence"`
	EnableLLMSummarization bool    `mapstructure:"enable_llm_summarization"`
}

// LLMConfig defines the selected language model provider used for hypothesis
// summarization and its operational parameters.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	OllamaURL   string  `mapstructure:"ollama_url"`
	OllamaModel string  `mapstructure:"ollama_model"`
	APIKey      string  `mapstructure:"-"`
}

// StoreConfig defines the SQLite persistence settings for analysis results.
type StoreConfig struct {
	Path    string `mapstructure:"path"`
	Enabled bool   `mapstructure:"enabled"`
}

// GetMaxHypotheses returns the configured hypothesis cap; values at or below
// zero mean unbounded.
func (c *SynthesisConfig) GetMaxHypotheses() int {
	if c.MaxHypotheses < 0 {
		return 0
	}
	return c.MaxHypotheses
}

// GetMinConfidence clamps negative thresholds to zero.
func (c *SynthesisConfig) GetMinConfidence() float64 {
	if c.MinConfidence < 0 {
		return 0
	}
	return c.MinConfidence
}

// ProviderType returns the LLM provider type
func (c *LLMConfig) ProviderType() string {
	return strings.ToLower(c.Provider)
}

// Load loads configuration from config.yaml or environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/spansight")

	// Allow environment variables to override config
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	viper.SetDefault("app.host", "0.0.0.0")
	viper.SetDefault("app.port", 8080)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("synthesis.max_hypotheses", 5)
	viper.SetDefault("synthesis.min_confidence", 0.0)
	viper.SetDefault("synthesis.enable_llm_summarization", false)
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o")
	viper.SetDefault("llm.temperature", 0.1)
	viper.SetDefault("llm.max_tokens", 512)
	viper.SetDefault("llm.ollama_url", "http://localhost:11434")
	viper.SetDefault("llm.ollama_model", "llama3")
	viper.SetDefault("store.path", "data/spansight.db")
	viper.SetDefault("store.enabled", true)

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Get API keys from environment
	if cfg.LLM.ProviderType() != "ollama" {
		apiKeyEnv := "OPENAI_API_KEY"
		if cfg.LLM.ProviderType() == "anthropic" {
			apiKeyEnv = "ANTHROPIC_API_KEY"
		}
		cfg.LLM.APIKey = os.Getenv(apiKeyEnv)
	}

	return &cfg, nil
}
