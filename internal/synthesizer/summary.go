package synthesizer

import (
	"fmt"

	"spansight/internal/models"
)

// Template summaries are always available and never fail; the injected
// summarizer callback may replace them per hypothesis, but the top-level
// result summary is always template-generated.

func causalSummary(root *models.Span, chainLen int) string {
	msg := root.StatusMessage
	if msg == "" {
		msg = "no status message"
	}
	if chainLen > 1 {
		return fmt.Sprintf("Root cause: %s span %q failed (%s), cascading into %d downstream failure(s).",
			root.Component, root.Name, msg, chainLen-1)
	}
	return fmt.Sprintf("Root cause: %s span %q failed (%s) with no downstream failures.",
		root.Component, root.Name, msg)
}

func patternSummary(first *models.Span, size int, category models.HypothesisCategory) string {
	label := "Contributing factor"
	if category == models.CategorySystemicIssue {
		label = "Systemic issue"
	}
	msg := NormalizeMessage(first.StatusMessage)
	if msg == "" {
		msg = "no status message"
	}
	return fmt.Sprintf("%s: %d spans failed like %s span %q (%s).",
		label, size, first.Component, first.Name, msg)
}
