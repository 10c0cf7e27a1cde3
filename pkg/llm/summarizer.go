package llm

import (
	"context"
	"fmt"
	"strings"

	"spansight/internal/models"
	"spansight/internal/synthesizer"
)

// HypothesisSummarizer adapts a Provider into the synthesizer's summarizer
// callback. The engine only ever sees the returned function value, so it
// stays free of any LLM client code; callback errors degrade the affected
// hypothesis to its template summary upstream.
func HypothesisSummarizer(p Provider) synthesizer.SummarizerFunc {
	return func(ctx context.Context, hyp *models.Hypothesis, trace *models.Trace) (string, error) {
		return p.Summarize(ctx, buildHypothesisPrompt(hyp, trace))
	}
}

// buildHypothesisPrompt renders one hypothesis with minimal trace context.
func buildHypothesisPrompt(hyp *models.Hypothesis, trace *models.Trace) string {
	var evidence strings.Builder
	for i, e := range hyp.EvidenceChain {
		if i >= 10 {
			break
		}
		if e.TargetSpanID != "" && e.TargetSpanID != e.SourceSpanID {
			fmt.Fprintf(&evidence, "- %s: %s -> %s (%s, strength %.2f)\n", e.Type, e.SourceSpanID, e.TargetSpanID, e.Description, e.Strength)
		} else {
			fmt.Fprintf(&evidence, "- %s: %s (%s, strength %.2f)\n", e.Type, e.SourceSpanID, e.Description, e.Strength)
		}
	}

	pattern := "none"
	if hyp.Pattern != nil {
		pattern = fmt.Sprintf("%s (%d occurrences)", hyp.Pattern.Signature, hyp.Pattern.Occurrences)
	}

	return fmt.Sprintf(`An AI agent execution failed. Summarize the following root cause hypothesis in one sentence.

TRACE: %s
HYPOTHESIS:
- Category: %s
- Confidence: %.2f
- Method: %s (strength %.2f, sample size %d)
- Affected spans: %s
- Matched pattern: %s

EVIDENCE:
%s
Draft summary to improve: %s
`,
		trace.TraceID,
		hyp.Category,
		hyp.Confidence,
		hyp.StatisticalBasis.Method,
		hyp.StatisticalBasis.Strength,
		hyp.StatisticalBasis.SampleSize,
		strings.Join(hyp.AffectedSpans, ", "),
		pattern,
		evidence.String(),
		hyp.Summary,
	)
}
