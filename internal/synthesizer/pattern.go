package synthesizer

import (
	"fmt"

	"spansight/internal/models"
)

const (
	// Cluster strength blends relative frequency with absolute size;
	// absolute counts saturate at patternSaturationSize occurrences.
	frequencyWeight       = 0.4
	sizeWeight            = 0.6
	patternSaturationSize = 5

	// Pattern confidence is scaled below causal confidence so that, for
	// comparable evidence, a structural root cause always outranks a
	// statistical cluster. Ceiling here is 0.85, under the 0.9 causal floor.
	patternConfidenceScale = 0.85

	minClusterSize = 2
)

// patternFindings holds the clustering summary plus one hypothesis per
// cluster that cleared the minimum size.
type patternFindings struct {
	analysis   models.PatternAnalysis
	hypotheses []*models.Hypothesis
}

// analyzePatterns flattens every failing span regardless of causal
// relationship, groups them by normalized signature, and scores each
// cluster's statistical strength. Singleton clusters contribute nothing:
// one occurrence is not a pattern.
func analyzePatterns(trace *models.Trace) patternFindings {
	errSpans := trace.ErrorSpans()

	// Group by signature, preserving first-seen order for determinism.
	groups := make(map[string][]*models.Span)
	var order []string
	for _, s := range errSpans {
		sig := Signature(s)
		if _, seen := groups[sig]; !seen {
			order = append(order, sig)
		}
		groups[sig] = append(groups[sig], s)
	}

	findings := patternFindings{
		analysis: models.PatternAnalysis{
			TotalFailures:  len(errSpans),
			UniquePatterns: len(order),
		},
	}

	for i, sig := range order {
		members := groups[sig]
		if len(members) < minClusterSize {
			continue
		}
		strength := clusterStrength(len(members), len(errSpans))

		memberIDs := make([]string, 0, len(members))
		components := make(map[models.ComponentType]bool)
		evidence := make([]models.EvidenceLink, 0, len(members))
		for _, m := range members {
			memberIDs = append(memberIDs, m.SpanID)
			components[m.Component] = true
			evidence = append(evidence, models.EvidenceLink{
				Type:         models.EvidenceMatchesPattern,
				SourceSpanID: m.SpanID,
				Description:  fmt.Sprintf("%q failed matching pattern %q", m.Name, sig),
				Strength:     strength,
			})
		}

		category := models.CategoryContributingFactor
		if len(components) > 1 {
			category = models.CategorySystemicIssue
		}

		findings.hypotheses = append(findings.hypotheses, &models.Hypothesis{
			ID:            fmt.Sprintf("pattern-%d", i+1),
			Confidence:    patternConfidenceScale * strength,
			Category:      category,
			Summary:       patternSummary(members[0], len(members), category),
			EvidenceChain: evidence,
			AffectedSpans: memberIDs,
			StatisticalBasis: models.StatisticalBasis{
				Method:     models.MethodPatternClustering,
				Strength:   strength,
				SampleSize: len(members),
			},
			Pattern: &models.Pattern{
				Signature:   sig,
				Occurrences: len(members),
				Spans:       memberIDs,
			},
		})
	}

	return findings
}

// clusterStrength combines how much of the failure volume a cluster explains
// with how many raw occurrences back it. Always in (0, 1].
func clusterStrength(size, total int) float64 {
	frequency := float64(size) / float64(total)
	saturation := float64(size) / float64(patternSaturationSize)
	if saturation > 1 {
		saturation = 1
	}
	s := frequencyWeight*frequency + sizeWeight*saturation
	if s > 1 {
		return 1
	}
	return s
}
