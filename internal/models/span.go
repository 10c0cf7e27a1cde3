// Package models defines the shared core data structures used throughout SpanSight.
package models

import "time"

// SpanStatus represents the terminal status of a span.
type SpanStatus string

const (
	StatusUnset SpanStatus = "unset"
	StatusOK    SpanStatus = "ok"
	StatusError SpanStatus = "error"
)

// SpanType classifies what kind of work a span records.
type SpanType string

const (
	SpanTypeGeneric    SpanType = "generic"
	SpanTypeGeneration SpanType = "generation"
	SpanTypeTool       SpanType = "tool"
	SpanTypeRetrieval  SpanType = "retrieval"
)

// ComponentType identifies which part of an agent a span belongs to.
type ComponentType string

const (
	ComponentTool      ComponentType = "tool"
	ComponentRetrieval ComponentType = "retrieval"
	ComponentReasoning ComponentType = "reasoning"
	ComponentPlanning  ComponentType = "planning"
	ComponentMemory    ComponentType = "memory"
	ComponentRouting   ComponentType = "routing"
	ComponentOther     ComponentType = "other"
)

// Span represents a single timed operation within an agent execution trace.
// Children are ordered by insertion, which is structural order and not
// necessarily temporal order.
type Span struct {
	SpanID        string            `json:"spanId"`
	TraceID       string            `json:"traceId"`
	ParentSpanID  string            `json:"parentSpanId,omitempty"`
	Name          string            `json:"name"`
	SpanType      SpanType          `json:"spanType"`
	Component     ComponentType     `json:"componentType"`
	Status        SpanStatus        `json:"status"`
	StatusMessage string            `json:"statusMessage,omitempty"`
	StartTime     time.Time         `json:"startTime"`
	EndTime       time.Time         `json:"endTime"`
	DurationMs    int64             `json:"durationMs"`
	Model         string            `json:"model,omitempty"`
	Tool          string            `json:"tool,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	Children      []*Span           `json:"children,omitempty"`
}

// IsError returns true if the span finished with an error status.
func (s *Span) IsError() bool {
	return s.Status == StatusError
}

// FailedAt returns the timestamp at which the span's failure was recorded:
// the end time when present, otherwise the start time.
func (s *Span) FailedAt() time.Time {
	if !s.EndTime.IsZero() {
		return s.EndTime
	}
	return s.StartTime
}

// Trace represents the complete forest of spans for one agent execution.
// A span is part of the trace if it is reachable from a root via child links.
type Trace struct {
	TraceID string     `json:"traceId"`
	Spans   []*Span    `json:"spans"`
	Status  SpanStatus `json:"status,omitempty"`
}

// AllSpans flattens the trace into depth-first pre-order. The order is
// deterministic for a given trace and is used as discovery order everywhere
// downstream.
func (t *Trace) AllSpans() []*Span {
	var out []*Span
	var walk func(s *Span)
	walk = func(s *Span) {
		if s == nil {
			return
		}
		out = append(out, s)
		for _, c := range s.Children {
			walk(c)
		}
	}
	for _, root := range t.Spans {
		walk(root)
	}
	return out
}

// ErrorSpans returns all error-status spans in discovery order.
func (t *Trace) ErrorSpans() []*Span {
	var out []*Span
	for _, s := range t.AllSpans() {
		if s.IsError() {
			out = append(out, s)
		}
	}
	return out
}
