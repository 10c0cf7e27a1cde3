package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spansight/internal/config"
	"spansight/internal/models"
	"spansight/internal/store"
	"spansight/internal/synthesizer"
)

// Handler holds the server dependencies
type Handler struct {
	cfg        *config.Config
	store      *store.Store
	summarizer synthesizer.SummarizerFunc
}

// NewHandler creates a new handler. The store and summarizer may be nil:
// without a store results are not persisted, and without a summarizer
// hypotheses keep their template summaries.
func NewHandler(cfg *config.Config, st *store.Store, summarizer synthesizer.SummarizerFunc) *Handler {
	return &Handler{
		cfg:        cfg,
		store:      st,
		summarizer: summarizer,
	}
}

// RegisterRoutes registers all HTTP routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/analyze", h.HandleAnalyze)
	r.Get("/api/v1/analyses", h.HandleListAnalyses)
	r.Get("/api/v1/analyses/{id}", h.HandleGetAnalysis)
	r.Get("/healthz", h.HandleHealth)
	r.Get("/readyz", h.HandleReady)
	r.Handle("/metrics", promhttp.Handler())
}

// AnalyzeRequest is the payload for POST /api/v1/analyze: the trace to
// analyze plus optional per-request overrides of the synthesis settings.
type AnalyzeRequest struct {
	Trace   models.Trace    `json:"trace"`
	Options *AnalyzeOptions `json:"options,omitempty"`
}

// AnalyzeOptions overrides the configured synthesis settings for one request.
type AnalyzeOptions struct {
	MaxHypotheses          *int     `json:"maxHypotheses,omitempty"`
	MinConfidence          *float64 `json:"minConfidence,omitempty"`
	EnableLLMSummarization *bool    `json:"enableLLMSummarization,omitempty"`
}

// AnalyzeResponse wraps the synthesis result with its persisted record id.
type AnalyzeResponse struct {
	ID     string                     `json:"id"`
	Result *models.RCASynthesisResult `json:"result"`
}

// HandleAnalyze runs root cause analysis over a trace posted as JSON.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("Failed to parse analyze payload: %v", err)
		http.Error(w, "Invalid analyze payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	cfg := h.synthesisConfig(req.Options)

	start := time.Now()
	result := synthesizer.SynthesizeRootCause(r.Context(), &req.Trace, cfg)
	analysisDuration.Observe(time.Since(start).Seconds())
	analysesTotal.WithLabelValues(analysisOutcome(result)).Inc()

	resp := AnalyzeResponse{
		ID:     uuid.New().String(),
		Result: result,
	}

	if h.store != nil {
		if err := h.persist(resp.ID, &req.Trace, result); err != nil {
			// Persistence is best-effort; the analysis itself succeeded.
			log.Printf("Failed to persist analysis %s: %v", resp.ID, err)
		}
	}

	log.Printf("Analyzed trace %s: %d hypotheses", req.Trace.TraceID, len(result.Hypotheses))
	writeJSON(w, http.StatusOK, resp)
}

// HandleListAnalyses returns recent persisted analyses.
func (h *Handler) HandleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}
	analyses, err := h.store.List(50)
	if err != nil {
		log.Printf("Failed to list analyses: %v", err)
		http.Error(w, "Failed to list analyses", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
}

// HandleGetAnalysis fetches one persisted analysis by id.
func (h *Handler) HandleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "Persistence disabled", http.StatusNotFound)
		return
	}
	id := chi.URLParam(r, "id")
	analysis, err := h.store.Get(id)
	if err != nil {
		http.Error(w, "Analysis not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// HandleHealth returns health status
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReady returns readiness status
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(); err != nil {
			http.Error(w, "Store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// synthesisConfig merges configured defaults with per-request overrides.
func (h *Handler) synthesisConfig(opts *AnalyzeOptions) synthesizer.Config {
	cfg := synthesizer.Config{
		MaxHypotheses:          h.cfg.Synthesis.GetMaxHypotheses(),
		MinConfidence:          h.cfg.Synthesis.GetMinConfidence(),
		EnableLLMSummarization: h.cfg.Synthesis.EnableLLMSummarization,
		Summarizer:             h.summarizer,
	}
	if opts == nil {
		return cfg
	}
	if opts.MaxHypotheses != nil {
		cfg.MaxHypotheses = *opts.MaxHypotheses
	}
	if opts.MinConfidence != nil {
		cfg.MinConfidence = *opts.MinConfidence
	}
	if opts.EnableLLMSummarization != nil {
		cfg.EnableLLMSummarization = *opts.EnableLLMSummarization
	}
	return cfg
}

func (h *Handler) persist(id string, trace *models.Trace, result *models.RCASynthesisResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	rootSpan := ""
	if result.CausalAnalysis.RootCause != nil {
		rootSpan = result.CausalAnalysis.RootCause.SpanID
	}
	return h.store.Save(&store.Analysis{
		ID:              id,
		TraceID:         trace.TraceID,
		SpanCount:       len(trace.AllSpans()),
		ErrorCount:      result.PatternAnalysis.TotalFailures,
		RootCauseSpan:   rootSpan,
		HypothesisCount: len(result.Hypotheses),
		Summary:         result.Summary,
		Result:          raw,
		CreatedAt:       time.Now().UTC(),
	})
}

func analysisOutcome(result *models.RCASynthesisResult) string {
	if !result.CausalAnalysis.HasErrors {
		return "clean"
	}
	return "errors_found"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
