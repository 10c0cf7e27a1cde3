package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spansight/internal/config"
)

func newTestServer() *Server {
	return New(&config.Config{
		Synthesis: config.SynthesisConfig{MaxHypotheses: 5},
	}, nil)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

const sampleTraceJSON = `{
	"traceId": "trace-mcp",
	"spans": [{
		"spanId": "root",
		"name": "agent_run",
		"componentType": "planning",
		"status": "ok",
		"startTime": "2026-03-14T12:00:00Z",
		"endTime": "2026-03-14T12:00:10Z",
		"children": [
			{"spanId": "e1", "name": "http_get", "componentType": "tool", "status": "error",
			 "statusMessage": "Connection timeout after 30s",
			 "startTime": "2026-03-14T12:00:01Z", "endTime": "2026-03-14T12:00:02Z"},
			{"spanId": "e2", "name": "http_get", "componentType": "tool", "status": "error",
			 "statusMessage": "Connection timeout after 60s",
			 "startTime": "2026-03-14T12:00:03Z", "endTime": "2026-03-14T12:00:04Z"}
		]
	}]
}`

func TestHandleAnalyzeTrace(t *testing.T) {
	s := newTestServer()

	result, err := s.HandleAnalyzeTrace(context.Background(), callRequest("analyze_trace", map[string]any{
		"trace_json": sampleTraceJSON,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "Analyzed 3 spans")
	assert.Contains(t, text, "Root cause span: e1")
	assert.Contains(t, text, "#1 [root_cause]")
	assert.Contains(t, text, "increase_timeout")
}

func TestHandleAnalyzeTraceMaxHypotheses(t *testing.T) {
	s := newTestServer()

	result, err := s.HandleAnalyzeTrace(context.Background(), callRequest("analyze_trace", map[string]any{
		"trace_json":     sampleTraceJSON,
		"max_hypotheses": 1,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.NotContains(t, resultText(t, result), "#2 ")
}

func TestHandleAnalyzeTraceInvalidJSON(t *testing.T) {
	s := newTestServer()

	result, err := s.HandleAnalyzeTrace(context.Background(), callRequest("analyze_trace", map[string]any{
		"trace_json": "{not json",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleAnalyzeTraceMissingArgument(t *testing.T) {
	s := newTestServer()

	result, err := s.HandleAnalyzeTrace(context.Background(), callRequest("analyze_trace", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleSuggestRemediation(t *testing.T) {
	s := newTestServer()

	result, err := s.HandleSuggestRemediation(context.Background(), callRequest("suggest_remediation", map[string]any{
		"status_message": "Connection timeout after 30s",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := resultText(t, result)
	assert.Contains(t, text, "increase_timeout")
	assert.Contains(t, text, "Based on:")
}

func TestHandleSuggestRemediationNoMatch(t *testing.T) {
	s := newTestServer()

	result, err := s.HandleSuggestRemediation(context.Background(), callRequest("suggest_remediation", map[string]any{
		"status_message": "an entirely novel failure",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "No remediation rule")
}
