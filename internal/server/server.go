package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"spansight/internal/config"
	"spansight/internal/store"
	"spansight/internal/synthesizer"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg     *config.Config
	srv     *http.Server
	handler *Handler
}

// New creates a new server instance. The store and summarizer are optional;
// see NewHandler.
func New(cfg *config.Config, st *store.Store, summarizer synthesizer.SummarizerFunc) *Server {
	handler := NewHandler(cfg, st, summarizer)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		cfg:     cfg,
		srv:     srv,
		handler: handler,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Server listening on %s", s.srv.Addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}
