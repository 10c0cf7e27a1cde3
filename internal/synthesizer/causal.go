package synthesizer

import (
	"fmt"
	"sort"

	"spansight/internal/models"
)

// Causal edge strength reflects temporal adjacency. A parent whose failure
// precedes or coincides with its child's stays in [adjacentEdgeStrength,
// maxEdgeStrength]; when the recorded order is inverted (the child's failure
// predates the parent's), strength decays per second of inversion down to
// minEdgeStrength.
const (
	maxEdgeStrength       = 0.95
	adjacentEdgeStrength  = 0.9
	minEdgeStrength       = 0.5
	edgeDecayPerSecond    = 0.05
	forwardDecayPerSecond = 0.01

	// A root cause backed by at least one descendant failure is a strong
	// structural signal; an isolated failure carries weaker systemic evidence.
	chainedCausalConfidence  = 1.0
	isolatedCausalConfidence = 0.9
)

// causalFindings holds the output of the causal walk: the analysis summary
// plus at most one root-cause hypothesis.
type causalFindings struct {
	analysis   models.CausalAnalysis
	hypothesis *models.Hypothesis
}

// causalEdge is one directed "caused" link between two failing spans.
type causalEdge struct {
	parent   *models.Span
	child    *models.Span
	strength float64
}

// analyzeCausal walks the span tree, links failing parents to failing
// children with "caused" edges, and picks the earliest unblamed failure as
// the structural root cause. The trace is read-only; all bookkeeping lives
// in local id-indexed maps.
func analyzeCausal(trace *models.Trace) causalFindings {
	errSpans := trace.ErrorSpans()
	if len(errSpans) == 0 {
		return causalFindings{analysis: models.CausalAnalysis{HasErrors: false}}
	}

	parents := parentIndex(trace)

	// Directed caused edges between adjacent failing spans, keyed by parent.
	edgesFrom := make(map[string][]causalEdge)
	hasErrorParent := make(map[string]bool)
	for _, child := range errSpans {
		parent := parents[child.SpanID]
		if parent == nil || !parent.IsError() {
			continue
		}
		hasErrorParent[child.SpanID] = true
		edgesFrom[parent.SpanID] = append(edgesFrom[parent.SpanID], causalEdge{
			parent:   parent,
			child:    child,
			strength: edgeStrength(parent, child),
		})
	}

	// Root candidates have no failing ancestor: in-degree zero in the caused
	// graph. Earliest failure wins, span id breaks exact timestamp ties.
	var candidates []*models.Span
	for _, s := range errSpans {
		if !hasErrorParent[s.SpanID] {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		ti, tj := candidates[i].StartTime, candidates[j].StartTime
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return candidates[i].SpanID < candidates[j].SpanID
	})
	root := candidates[0]

	// Collect the contiguous failure chain under the root, root-first.
	chain := []*models.Span{root}
	var evidence []models.EvidenceLink
	queue := []*models.Span{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range edgesFrom[cur.SpanID] {
			chain = append(chain, e.child)
			evidence = append(evidence, models.EvidenceLink{
				Type:         models.EvidenceCaused,
				SourceSpanID: e.parent.SpanID,
				TargetSpanID: e.child.SpanID,
				Description:  fmt.Sprintf("failure of %q propagated to %q", e.parent.Name, e.child.Name),
				Strength:     e.strength,
			})
			queue = append(queue, e.child)
		}
	}

	confidence := isolatedCausalConfidence
	if len(chain) > 1 {
		confidence = chainedCausalConfidence
	}

	// An isolated failure has no caused edges; its own span is the evidence.
	if len(evidence) == 0 {
		evidence = []models.EvidenceLink{{
			Type:         models.EvidenceCaused,
			SourceSpanID: root.SpanID,
			TargetSpanID: root.SpanID,
			Description:  fmt.Sprintf("%q failed with no failing ancestor or descendant", root.Name),
			Strength:     maxEdgeStrength,
		}}
	}

	affected := make([]string, 0, len(chain))
	for _, s := range chain {
		affected = append(affected, s.SpanID)
	}

	hyp := &models.Hypothesis{
		ID:            "causal-" + root.SpanID,
		Confidence:    confidence,
		Category:      models.CategoryRootCause,
		Summary:       causalSummary(root, len(chain)),
		EvidenceChain: evidence,
		AffectedSpans: affected,
		StatisticalBasis: models.StatisticalBasis{
			Method:     models.MethodCausalDAG,
			Strength:   1.0,
			SampleSize: len(chain),
		},
	}

	return causalFindings{
		analysis: models.CausalAnalysis{
			HasErrors: true,
			RootCause: &models.RootCause{
				SpanID:    root.SpanID,
				Component: string(root.Component),
				Message:   root.StatusMessage,
			},
		},
		hypothesis: hyp,
	}
}

// parentIndex maps every span id to its parent span. Roots, and spans whose
// ParentSpanID references nothing reachable in the trace, map to nil: a
// malformed trace degrades to extra roots rather than an error, since trace
// integrity is not the synthesizer's responsibility.
func parentIndex(trace *models.Trace) map[string]*models.Span {
	parents := make(map[string]*models.Span)
	var walk func(s *models.Span)
	walk = func(s *models.Span) {
		for _, c := range s.Children {
			parents[c.SpanID] = s
			walk(c)
		}
	}
	for _, root := range trace.Spans {
		walk(root)
	}
	return parents
}

// edgeStrength scores temporal adjacency between a failing parent and child.
// The parent failing at or before the child is the expected causal order and
// always scores at least adjacentEdgeStrength; an inverted recording order
// weakens the edge per second of inversion, bounded below at the floor.
func edgeStrength(parent, child *models.Span) float64 {
	gap := child.FailedAt().Sub(parent.FailedAt()).Seconds()
	if gap >= 0 {
		s := maxEdgeStrength - forwardDecayPerSecond*gap
		if s < adjacentEdgeStrength {
			return adjacentEdgeStrength
		}
		return s
	}
	s := adjacentEdgeStrength + edgeDecayPerSecond*gap
	if s < minEdgeStrength {
		return minEdgeStrength
	}
	return s
}
