package synthesizer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spansight/internal/models"
)

// mixedFailureTrace has an ok root with three timeout failures and two auth
// failures, the scenario from the dashboard's demo data.
func mixedFailureTrace() *models.Trace {
	return &models.Trace{
		TraceID: "trace-mixed",
		Spans: []*models.Span{
			okSpan("root", "agent_run", 0,
				errSpan("t1", "http_get", models.ComponentTool, "Connection timeout after 30s", 1),
				errSpan("t2", "http_get", models.ComponentTool, "Connection timeout after 30s", 2),
				errSpan("t3", "http_get", models.ComponentTool, "Connection timeout after 30s", 3),
				errSpan("a1", "auth_check", models.ComponentTool, "Authentication failed: invalid token", 4),
				errSpan("a2", "auth_check", models.ComponentTool, "Authentication failed: invalid token", 5),
			),
		},
	}
}

func TestSynthesizeCleanTrace(t *testing.T) {
	trace := &models.Trace{
		TraceID: "trace-clean",
		Spans:   []*models.Span{okSpan("a", "root", 0, okSpan("b", "step", 1))},
	}

	result := SynthesizeRootCause(context.Background(), trace, Config{})

	assert.Empty(t, result.Hypotheses)
	assert.False(t, result.CausalAnalysis.HasErrors)
	assert.Nil(t, result.CausalAnalysis.RootCause)
	assert.Equal(t, 0, result.PatternAnalysis.TotalFailures)
	assert.Contains(t, result.Summary, "No errors detected")
}

func TestSynthesizeSingleErrorSpan(t *testing.T) {
	trace := &models.Trace{
		TraceID: "trace-single",
		Spans: []*models.Span{
			okSpan("root", "agent_run", 0,
				errSpan("e1", "fetch_docs", models.ComponentRetrieval, "timeout after 30s", 2),
			),
		},
	}

	result := SynthesizeRootCause(context.Background(), trace, Config{})

	require.Len(t, result.Hypotheses, 1)
	hyp := result.Hypotheses[0]
	assert.Equal(t, models.CategoryRootCause, hyp.Category)
	assert.Equal(t, 1, hyp.Rank)
	assert.Greater(t, hyp.Confidence, 0.0)
	assert.Equal(t, "e1", result.CausalAnalysis.RootCause.SpanID)
	assert.NotEmpty(t, hyp.Summary)
	assert.NotEmpty(t, hyp.EvidenceChain)
	assert.Contains(t, result.Summary, "Analyzed 2 spans")
	assert.Contains(t, result.Summary, "found 1 errors")

	// "timeout" matches the first remediation rule.
	require.NotNil(t, hyp.Remediation)
	assert.Equal(t, "increase_timeout", hyp.Remediation.Action)
}

func TestSynthesizeRanksAreDenseAndConfidenceNonIncreasing(t *testing.T) {
	result := SynthesizeRootCause(context.Background(), mixedFailureTrace(), Config{})

	require.NotEmpty(t, result.Hypotheses)
	for i, h := range result.Hypotheses {
		assert.Equal(t, i+1, h.Rank)
		if i > 0 {
			assert.LessOrEqual(t, h.Confidence, result.Hypotheses[i-1].Confidence)
		}
	}
}

func TestSynthesizeMixedFailureScenario(t *testing.T) {
	result := SynthesizeRootCause(context.Background(), mixedFailureTrace(), Config{})

	assert.Equal(t, 5, result.PatternAnalysis.TotalFailures)
	assert.GreaterOrEqual(t, result.PatternAnalysis.UniquePatterns, 2)

	var withPattern int
	signatures := make(map[string]bool)
	for _, h := range result.Hypotheses {
		if h.Pattern != nil {
			withPattern++
			assert.False(t, signatures[h.Pattern.Signature], "duplicate pattern signature in results")
			signatures[h.Pattern.Signature] = true
		}
	}
	assert.GreaterOrEqual(t, withPattern, 1, "at least one hypothesis must carry a pattern")
	assert.GreaterOrEqual(t, len(result.Hypotheses), 2, "the two failure groups must not collapse")

	// The earliest timeout failure is the structural root cause; the cluster
	// it belongs to is merged onto it rather than duplicated.
	first := result.Hypotheses[0]
	assert.Equal(t, models.CategoryRootCause, first.Category)
	require.NotNil(t, first.Pattern)
	assert.Equal(t, 3, first.Pattern.Occurrences)
}

func TestSynthesizeIndependentSameSignatureFailures(t *testing.T) {
	// Three unrelated roots failing identically: causal still picks the
	// earliest, pattern clustering finds one cluster of three, and the two
	// findings collapse into one hypothesis.
	trace := &models.Trace{
		TraceID: "trace-flat",
		Spans: []*models.Span{
			errSpan("s2", "worker", models.ComponentTool, "connection refused by host 10", 4),
			errSpan("s1", "worker", models.ComponentTool, "connection refused by host 11", 1),
			errSpan("s3", "worker", models.ComponentTool, "connection refused by host 12", 9),
		},
	}

	result := SynthesizeRootCause(context.Background(), trace, Config{})

	assert.Equal(t, "s1", result.CausalAnalysis.RootCause.SpanID)
	assert.Equal(t, 3, result.PatternAnalysis.TotalFailures)
	assert.Equal(t, 1, result.PatternAnalysis.UniquePatterns)

	// No two hypotheses may share affected spans.
	seen := make(map[string]bool)
	for _, h := range result.Hypotheses {
		for _, id := range h.AffectedSpans {
			assert.False(t, seen[id], "span %s appears in two hypotheses", id)
			seen[id] = true
		}
	}

	require.Len(t, result.Hypotheses, 1)
	hyp := result.Hypotheses[0]
	assert.Equal(t, models.CategoryRootCause, hyp.Category)
	require.NotNil(t, hyp.Pattern, "cluster metadata must survive the merge")
	assert.Equal(t, 3, hyp.Pattern.Occurrences)
	require.NotNil(t, hyp.Remediation)
	assert.Equal(t, "check_service_availability", hyp.Remediation.Action)
}

func TestSynthesizeMaxHypothesesTruncates(t *testing.T) {
	trace := mixedFailureTrace()

	unbounded := SynthesizeRootCause(context.Background(), trace, Config{})
	require.GreaterOrEqual(t, len(unbounded.Hypotheses), 2)

	capped := SynthesizeRootCause(context.Background(), trace, Config{MaxHypotheses: 1})
	assert.Len(t, capped.Hypotheses, 1)
	assert.Equal(t, 1, capped.Hypotheses[0].Rank)
	assert.Equal(t, unbounded.Hypotheses[0].ID, capped.Hypotheses[0].ID)
}

func TestSynthesizeMinConfidenceFilters(t *testing.T) {
	trace := mixedFailureTrace()

	result := SynthesizeRootCause(context.Background(), trace, Config{MinConfidence: 0.5})
	for _, h := range result.Hypotheses {
		assert.GreaterOrEqual(t, h.Confidence, 0.5)
	}

	// A threshold above every confidence empties the list, but the raw
	// analyses still reflect the trace.
	empty := SynthesizeRootCause(context.Background(), trace, Config{MinConfidence: 1.1})
	assert.Empty(t, empty.Hypotheses)
	assert.True(t, empty.CausalAnalysis.HasErrors)
	assert.Equal(t, 5, empty.PatternAnalysis.TotalFailures)
}

func TestSynthesizeNegativeConfigClampsToDefaults(t *testing.T) {
	trace := mixedFailureTrace()

	result := SynthesizeRootCause(context.Background(), trace, Config{
		MinConfidence: -3,
		MaxHypotheses: -7,
	})
	assert.NotEmpty(t, result.Hypotheses, "negative settings must behave like the defaults")
}

func TestSummarizerNotInvokedWhenDisabled(t *testing.T) {
	calls := 0
	cfg := Config{
		EnableLLMSummarization: false,
		Summarizer: func(ctx context.Context, hyp *models.Hypothesis, trace *models.Trace) (string, error) {
			calls++
			return "should never appear", nil
		},
	}

	result := SynthesizeRootCause(context.Background(), mixedFailureTrace(), cfg)

	assert.Equal(t, 0, calls, "a supplied summarizer must not run when the flag is off")
	for _, h := range result.Hypotheses {
		assert.NotEqual(t, "should never appear", h.Summary)
	}
}

func TestSummarizerReplacesSummaryVerbatim(t *testing.T) {
	calls := 0
	cfg := Config{
		EnableLLMSummarization: true,
		Summarizer: func(ctx context.Context, hyp *models.Hypothesis, trace *models.Trace) (string, error) {
			calls++
			return fmt.Sprintf("llm summary for %s", hyp.ID), nil
		},
	}

	result := SynthesizeRootCause(context.Background(), mixedFailureTrace(), cfg)

	assert.GreaterOrEqual(t, calls, 1)
	assert.Equal(t, len(result.Hypotheses), calls, "one callback per hypothesis")
	for _, h := range result.Hypotheses {
		assert.Equal(t, fmt.Sprintf("llm summary for %s", h.ID), h.Summary)
	}
	// The top-level summary is never delegated to the callback.
	assert.Contains(t, result.Summary, "Analyzed")
}

func TestSummarizerErrorFallsBackToTemplate(t *testing.T) {
	cfg := Config{
		EnableLLMSummarization: true,
		Summarizer: func(ctx context.Context, hyp *models.Hypothesis, trace *models.Trace) (string, error) {
			return "", errors.New("model unavailable")
		},
	}

	result := SynthesizeRootCause(context.Background(), mixedFailureTrace(), cfg)

	require.NotEmpty(t, result.Hypotheses)
	for _, h := range result.Hypotheses {
		assert.NotEmpty(t, h.Summary, "template summary must survive a callback failure")
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	trace := mixedFailureTrace()
	cfg := Config{MaxHypotheses: 5}

	a := SynthesizeRootCause(context.Background(), trace, cfg)
	b := SynthesizeRootCause(context.Background(), trace, cfg)

	require.Equal(t, len(a.Hypotheses), len(b.Hypotheses))
	for i := range a.Hypotheses {
		assert.Equal(t, a.Hypotheses[i].Rank, b.Hypotheses[i].Rank)
		assert.Equal(t, a.Hypotheses[i].Confidence, b.Hypotheses[i].Confidence)
		assert.Equal(t, a.Hypotheses[i].AffectedSpans, b.Hypotheses[i].AffectedSpans)
		assert.Equal(t, a.Hypotheses[i].ID, b.Hypotheses[i].ID)
	}
	assert.Equal(t, a.Summary, b.Summary)
}

func TestSynthesizeEmptyTrace(t *testing.T) {
	result := SynthesizeRootCause(context.Background(), &models.Trace{TraceID: "trace-empty"}, Config{})

	assert.Empty(t, result.Hypotheses)
	assert.False(t, result.CausalAnalysis.HasErrors)
	assert.Contains(t, result.Summary, "No errors detected")
}
