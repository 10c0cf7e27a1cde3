// Package main provides the entry point for the SpanSight MCP (Model Context Protocol) server.
package main

import (
	"log"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"spansight/internal/config"
	mcpsrv "spansight/internal/mcp"
	"spansight/internal/synthesizer"
	"spansight/pkg/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// The LLM provider is only needed when hypothesis summarization is on.
	var summarizer synthesizer.SummarizerFunc
	if cfg.Synthesis.EnableLLMSummarization {
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to create LLM provider: %v", err)
		}
		summarizer = llm.HypothesisSummarizer(provider)
	}

	s := server.NewMCPServer(
		"spansight-mcp",
		"1.0.0",
	)

	// Bind the RCA tools to the MCP server.
	wrapper := mcpsrv.New(cfg, summarizer)
	wrapper.RegisterTools(s)

	slog.Info("SpanSight MCP Server listening on stdio...")
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
