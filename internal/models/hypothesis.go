package models

// EvidenceType classifies how a piece of evidence relates spans to a hypothesis.
type EvidenceType string

const (
	// EvidenceCaused is a directed causal edge; it always carries both a
	// source and a target span.
	EvidenceCaused EvidenceType = "caused"
	// EvidenceMatchesPattern marks a span as a member of a failure cluster;
	// the pattern itself is the implicit target.
	EvidenceMatchesPattern EvidenceType = "matches_pattern"
)

// EvidenceLink ties one or two spans to a hypothesis with a strength in [0,1].
type EvidenceLink struct {
	Type         EvidenceType `json:"type"`
	SourceSpanID string       `json:"sourceSpanId"`
	TargetSpanID string       `json:"targetSpanId,omitempty"`
	Description  string       `json:"description"`
	Strength     float64      `json:"strength"`
}

// Pattern describes a cluster of failures sharing one normalized signature.
// Patterns are computed fresh per analysis and never persisted.
type Pattern struct {
	Signature   string   `json:"signature"`
	Occurrences int      `json:"occurrences"`
	Spans       []string `json:"spans"`
}

// HypothesisCategory classifies what kind of explanation a hypothesis offers.
type HypothesisCategory string

const (
	CategoryRootCause          HypothesisCategory = "root_cause"
	CategoryContributingFactor HypothesisCategory = "contributing_factor"
	CategorySystemicIssue      HypothesisCategory = "systemic_issue"
)

// AnalysisMethod identifies which analyzer produced a hypothesis.
type AnalysisMethod string

const (
	MethodCausalDAG         AnalysisMethod = "causal_dag"
	MethodPatternClustering AnalysisMethod = "pattern_clustering"
)

// RemediationBasis records where a remediation suggestion comes from.
type RemediationBasis string

const (
	BasisHistoricalResolution RemediationBasis = "historical_resolution"
	BasisPatternMatch         RemediationBasis = "pattern_match"
	BasisBestPractice         RemediationBasis = "best_practice"
)

// Remediation is an actionable suggestion attached to a hypothesis.
type Remediation struct {
	Action      string           `json:"action"`
	Description string           `json:"description"`
	Confidence  float64          `json:"confidence"`
	BasedOn     RemediationBasis `json:"basedOn"`
}

// StatisticalBasis records the method and evidence weight behind a hypothesis.
type StatisticalBasis struct {
	Method     AnalysisMethod `json:"method"`
	Strength   float64        `json:"strength"`
	SampleSize int            `json:"sampleSize"`
}

// Hypothesis is one candidate explanation for why a trace failed.
type Hypothesis struct {
	ID               string             `json:"id"`
	Rank             int                `json:"rank"`
	Confidence       float64            `json:"confidence"`
	Category         HypothesisCategory `json:"category"`
	Summary          string             `json:"summary"`
	EvidenceChain    []EvidenceLink     `json:"evidenceChain"`
	AffectedSpans    []string           `json:"affectedSpans"`
	Remediation      *Remediation       `json:"remediation,omitempty"`
	StatisticalBasis StatisticalBasis   `json:"statisticalBasis"`
	Pattern          *Pattern           `json:"pattern,omitempty"`
}

// RootCause identifies the span chosen as the structural origin of failure.
type RootCause struct {
	SpanID    string `json:"spanId"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// CausalAnalysis summarizes the causal walk over the failing spans.
type CausalAnalysis struct {
	HasErrors bool       `json:"hasErrors"`
	RootCause *RootCause `json:"rootCause,omitempty"`
}

// PatternAnalysis summarizes the failure clustering pass.
type PatternAnalysis struct {
	TotalFailures  int `json:"totalFailures"`
	UniquePatterns int `json:"uniquePatterns"`
}

// RCASynthesisResult is the complete output of one synthesis run. It is
// constructed once per invocation and immutable after return.
type RCASynthesisResult struct {
	Hypotheses      []Hypothesis    `json:"hypotheses"`
	CausalAnalysis  CausalAnalysis  `json:"causalAnalysis"`
	PatternAnalysis PatternAnalysis `json:"patternAnalysis"`
	Summary         string          `json:"summary"`
}
