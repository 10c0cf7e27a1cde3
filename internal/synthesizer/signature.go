// Package synthesizer implements the root cause analysis engine: a pure,
// synchronous computation that turns one recorded agent trace into a ranked
// list of root-cause hypotheses.
package synthesizer

import (
	"regexp"
	"strings"

	"spansight/internal/models"
)

// Volatile tokens are scrubbed in a fixed order: UUIDs first so the digit
// pass does not shred their hex groups, then quoted values, then digit runs.
var (
	uuidPattern   = regexp.MustCompile(`(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)
	quotedPattern = regexp.MustCompile(`"[^"]*"|'[^']*'`)
	digitsPattern = regexp.MustCompile(`\d+`)
	spacePattern  = regexp.MustCompile(`\s+`)
)

// Signature builds the canonical pattern signature for a failing span:
// component type + span name + normalized status message. Spans that fail
// the same way collapse to the same signature regardless of ids, counts,
// or quoted values embedded in the message.
func Signature(span *models.Span) string {
	return string(span.Component) + "|" + span.Name + "|" + NormalizeMessage(span.StatusMessage)
}

// NormalizeMessage canonicalizes a status message by replacing volatile
// tokens with placeholders and collapsing whitespace. Case is preserved.
// If normalization yields an empty string the raw message is returned, so
// the function is total and never loses a signature entirely.
func NormalizeMessage(msg string) string {
	n := uuidPattern.ReplaceAllString(msg, "<uuid>")
	n = quotedPattern.ReplaceAllString(n, "<value>")
	n = digitsPattern.ReplaceAllString(n, "<n>")
	n = strings.TrimSpace(spacePattern.ReplaceAllString(n, " "))
	if n == "" {
		return strings.TrimSpace(msg)
	}
	return n
}
