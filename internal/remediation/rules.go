// Package remediation provides a fast, rule-based engine for suggesting fixes
// for known failure signatures.
package remediation

import (
	"strings"

	"spansight/internal/models"
)

// Rule matches a normalized status-message substring to a suggested fix.
type Rule struct {
	Match       string
	Action      string
	Description string
	Confidence  float64
	BasedOn     models.RemediationBasis
}

// rules is checked in order; the first match wins. Matching is
// case-insensitive substring containment on the status message.
var rules = []Rule{
	{
		Match:       "timeout",
		Action:      "increase_timeout",
		Description: "The operation exceeded its deadline. Raise the timeout for this component or reduce the size of the request.",
		Confidence:  0.8,
		BasedOn:     models.BasisPatternMatch,
	},
	{
		Match:       "connection refused",
		Action:      "check_service_availability",
		Description: "A downstream endpoint rejected the connection. Verify the service is running and reachable from the agent.",
		Confidence:  0.85,
		BasedOn:     models.BasisPatternMatch,
	},
	{
		Match:       "rate limit",
		Action:      "add_backoff",
		Description: "Requests are being throttled. Add exponential backoff or lower the request rate to this provider.",
		Confidence:  0.9,
		BasedOn:     models.BasisBestPractice,
	},
	{
		Match:       "authentication failed",
		Action:      "rotate_credentials",
		Description: "The provider rejected the supplied credentials. Verify and rotate the API key or token for this component.",
		Confidence:  0.85,
		BasedOn:     models.BasisHistoricalResolution,
	},
	{
		Match:       "invalid token",
		Action:      "refresh_token",
		Description: "The access token is malformed or expired. Refresh the token before retrying.",
		Confidence:  0.85,
		BasedOn:     models.BasisHistoricalResolution,
	},
	{
		Match:       "context length",
		Action:      "truncate_context",
		Description: "The model input exceeded its context window. Truncate or summarize the prompt before generation.",
		Confidence:  0.75,
		BasedOn:     models.BasisBestPractice,
	},
	{
		Match:       "not found",
		Action:      "verify_resource",
		Description: "A referenced resource does not exist. Check the identifier the agent passed to this call.",
		Confidence:  0.6,
		BasedOn:     models.BasisPatternMatch,
	},
}

// Suggest returns the first rule matching the status message, or nil when no
// rule applies. It is pure and never fails: an unmatched message simply
// yields no suggestion.
func Suggest(statusMessage string) *models.Remediation {
	if statusMessage == "" {
		return nil
	}
	msg := strings.ToLower(statusMessage)
	for _, r := range rules {
		if strings.Contains(msg, r.Match) {
			return &models.Remediation{
				Action:      r.Action,
				Description: r.Description,
				Confidence:  r.Confidence,
				BasedOn:     r.BasedOn,
			}
		}
	}
	return nil
}
