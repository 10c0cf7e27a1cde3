package synthesizer

import (
	"context"
	"fmt"
	"log"
	"sort"

	"spansight/internal/models"
	"spansight/internal/remediation"
)

// SummarizerFunc produces a human-readable summary for one hypothesis given
// minimal trace context. Implementations are typically backed by an LLM; the
// engine only sees the function value and stays free of any client code.
type SummarizerFunc func(ctx context.Context, hyp *models.Hypothesis, trace *models.Trace) (string, error)

// Config controls one synthesis run. The zero value is a valid default:
// template summaries only, no confidence filter, unbounded hypothesis count.
type Config struct {
	// EnableLLMSummarization gates the Summarizer callback. When false a
	// supplied callback is never invoked.
	EnableLLMSummarization bool
	// Summarizer replaces template summaries per hypothesis when enabled.
	Summarizer SummarizerFunc
	// MaxHypotheses truncates the ranked list; values <= 0 mean unbounded.
	MaxHypotheses int
	// MinConfidence drops hypotheses below the threshold; negative values
	// clamp to 0.
	MinConfidence float64
}

// Synthesizer runs root cause analysis over in-memory traces. It holds no
// mutable state: every Synthesize call is independently reentrant and
// deterministic given its inputs and a deterministic summarizer.
type Synthesizer struct {
	cfg Config
}

// New initializes a Synthesizer with the given configuration.
func New(cfg Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// SynthesizeRootCause is a convenience wrapper for one-shot callers.
func SynthesizeRootCause(ctx context.Context, trace *models.Trace, cfg Config) *models.RCASynthesisResult {
	return New(cfg).Synthesize(ctx, trace)
}

// Synthesize runs the full pipeline: causal walk and pattern clustering over
// the failing spans, hypothesis deduplication and ranking, remediation
// matching, then summarization. It never fails; the worst case is an empty
// or partially-summarized hypothesis list.
func (s *Synthesizer) Synthesize(ctx context.Context, trace *models.Trace) *models.RCASynthesisResult {
	causal := analyzeCausal(trace)
	patterns := analyzePatterns(trace)

	result := &models.RCASynthesisResult{
		Hypotheses:      []models.Hypothesis{},
		CausalAnalysis:  causal.analysis,
		PatternAnalysis: patterns.analysis,
	}

	totalSpans := len(trace.AllSpans())
	if !causal.analysis.HasErrors {
		result.Summary = fmt.Sprintf("No errors detected in trace %s: analyzed %d spans.", trace.TraceID, totalSpans)
		return result
	}

	// Causal candidate first, then patterns in discovery order; the stable
	// sort below preserves this order among equal confidences.
	var candidates []*models.Hypothesis
	if causal.hypothesis != nil {
		candidates = append(candidates, causal.hypothesis)
	}
	candidates = append(candidates, patterns.hypotheses...)

	kept := dedupe(candidates)

	minConfidence := s.cfg.MinConfidence
	if minConfidence < 0 {
		minConfidence = 0
	}
	filtered := kept[:0]
	for _, h := range kept {
		if h.Confidence >= minConfidence {
			filtered = append(filtered, h)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Confidence > filtered[j].Confidence
	})
	if max := s.cfg.MaxHypotheses; max > 0 && len(filtered) > max {
		filtered = filtered[:max]
	}

	messages := statusMessageIndex(trace)
	for i, h := range filtered {
		h.Rank = i + 1
		if len(h.AffectedSpans) > 0 {
			h.Remediation = remediation.Suggest(messages[h.AffectedSpans[0]])
		}
	}

	s.applySummaries(ctx, filtered, trace)

	result.Hypotheses = make([]models.Hypothesis, len(filtered))
	for i, h := range filtered {
		result.Hypotheses[i] = *h
	}
	result.Summary = fmt.Sprintf("Analyzed %d spans, found %d errors across %d distinct failure patterns; generated %d hypotheses.",
		totalSpans, patterns.analysis.TotalFailures, patterns.analysis.UniquePatterns, len(filtered))
	return result
}

// applySummaries delegates per-hypothesis summaries to the injected callback
// when summarization is enabled. Callbacks run sequentially; a callback error
// degrades that one hypothesis to its template summary and the run continues.
func (s *Synthesizer) applySummaries(ctx context.Context, hyps []*models.Hypothesis, trace *models.Trace) {
	if !s.cfg.EnableLLMSummarization || s.cfg.Summarizer == nil {
		return
	}
	for _, h := range hyps {
		summary, err := s.cfg.Summarizer(ctx, h, trace)
		if err != nil {
			log.Printf("summarizer failed for hypothesis %s, keeping template summary: %v", h.ID, err)
			continue
		}
		if summary != "" {
			h.Summary = summary
		}
	}
}

// dedupe collapses candidates whose affected span sets intersect, or which
// carry the same pattern signature, keeping the higher-confidence one. A
// pattern candidate discarded in favor of the causal hypothesis donates its
// pattern metadata to the survivor.
func dedupe(candidates []*models.Hypothesis) []*models.Hypothesis {
	kept := make([]*models.Hypothesis, 0, len(candidates))
	for _, cand := range candidates {
		discarded := false
		for i := 0; i < len(kept); i++ {
			k := kept[i]
			if !overlaps(k, cand) {
				continue
			}
			if cand.Confidence > k.Confidence {
				adoptPattern(cand, k)
				kept = append(kept[:i], kept[i+1:]...)
				i--
				continue
			}
			adoptPattern(k, cand)
			discarded = true
			break
		}
		if !discarded {
			kept = append(kept, cand)
		}
	}
	return kept
}

// overlaps reports whether two hypotheses explain overlapping evidence:
// a shared affected span, or an identical pattern signature.
func overlaps(a, b *models.Hypothesis) bool {
	if a.Pattern != nil && b.Pattern != nil && a.Pattern.Signature == b.Pattern.Signature {
		return true
	}
	seen := make(map[string]bool, len(a.AffectedSpans))
	for _, id := range a.AffectedSpans {
		seen[id] = true
	}
	for _, id := range b.AffectedSpans {
		if seen[id] {
			return true
		}
	}
	return false
}

// adoptPattern surfaces a discarded pattern candidate's metadata on a
// surviving causal hypothesis, so structural root causes can still report
// the cluster they belong to.
func adoptPattern(survivor, discarded *models.Hypothesis) {
	if survivor.Category == models.CategoryRootCause && survivor.Pattern == nil && discarded.Pattern != nil {
		survivor.Pattern = discarded.Pattern
	}
}

// statusMessageIndex maps span id to status message for remediation lookups.
func statusMessageIndex(trace *models.Trace) map[string]string {
	idx := make(map[string]string)
	for _, s := range trace.AllSpans() {
		idx[s.SpanID] = s.StatusMessage
	}
	return idx
}
