// Package main provides the entry point for the SpanSight HTTP service.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"spansight/internal/config"
	"spansight/internal/server"
	"spansight/internal/store"
	"spansight/internal/synthesizer"
	"spansight/pkg/llm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var st *store.Store
	if cfg.Store.Enabled {
		st, err = store.Open(cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to open store: %v", err)
		}
		defer st.Close()
		if err := st.Migrate(); err != nil {
			log.Fatalf("Failed to migrate store: %v", err)
		}
	}

	var summarizer synthesizer.SummarizerFunc
	if cfg.Synthesis.EnableLLMSummarization {
		provider, err := llm.NewProvider(cfg.LLM)
		if err != nil {
			log.Fatalf("Failed to create LLM provider: %v", err)
		}
		log.Printf("Hypothesis summarization enabled via %s", provider.Name())
		summarizer = llm.HypothesisSummarizer(provider)
	}

	srv := server.New(cfg, st, summarizer)

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	if err := srv.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
