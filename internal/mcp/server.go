// Package mcp binds SpanSight functionality to the Model Context Protocol (MCP) server standard.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"spansight/internal/config"
	"spansight/internal/models"
	"spansight/internal/remediation"
	"spansight/internal/synthesizer"
)

// Server defines the core MCP capability layer, exposing the RCA synthesizer
// to connected AI agents.
type Server struct {
	cfg        *config.Config
	summarizer synthesizer.SummarizerFunc
}

// New creates a new MCP server wrapper. The summarizer may be nil.
func New(cfg *config.Config, summarizer synthesizer.SummarizerFunc) *Server {
	return &Server{
		cfg:        cfg,
		summarizer: summarizer,
	}
}

// RegisterTools registers the SpanSight tools with the MCP server
func (s *Server) RegisterTools(mcpServer *server.MCPServer) {
	analyzeTool := mcp.NewTool("analyze_trace",
		mcp.WithDescription("Runs root cause analysis over a recorded agent execution trace and returns ranked hypotheses."),
		mcp.WithString("trace_json", mcp.Required(), mcp.Description("The trace as JSON: {traceId, spans: [...]} with nested children")),
		mcp.WithNumber("max_hypotheses", mcp.Description("Maximum number of hypotheses to return (0 = unbounded)")),
		mcp.WithNumber("min_confidence", mcp.Description("Drop hypotheses below this confidence (0..1)")),
	)
	mcpServer.AddTool(analyzeTool, s.HandleAnalyzeTrace)

	remediationTool := mcp.NewTool("suggest_remediation",
		mcp.WithDescription("Matches a failure status message against the known remediation rules."),
		mcp.WithString("status_message", mcp.Required(), mcp.Description("The span status message to match")),
	)
	mcpServer.AddTool(remediationTool, s.HandleSuggestRemediation)
}

// HandleAnalyzeTrace runs a full RCA via the synthesizer and renders a
// human-readable report.
func (s *Server) HandleAnalyzeTrace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	traceJSON := request.GetString("trace_json", "")
	if traceJSON == "" {
		return mcp.NewToolResultError("trace_json is required"), nil
	}

	var trace models.Trace
	if err := json.Unmarshal([]byte(traceJSON), &trace); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid trace JSON: %v", err)), nil
	}

	cfg := synthesizer.Config{
		MaxHypotheses:          request.GetInt("max_hypotheses", s.cfg.Synthesis.GetMaxHypotheses()),
		MinConfidence:          request.GetFloat("min_confidence", s.cfg.Synthesis.GetMinConfidence()),
		EnableLLMSummarization: s.cfg.Synthesis.EnableLLMSummarization,
		Summarizer:             s.summarizer,
	}

	result := synthesizer.SynthesizeRootCause(ctx, &trace, cfg)
	return mcp.NewToolResultText(renderReport(result)), nil
}

// HandleSuggestRemediation matches a status message against the rule table.
func (s *Server) HandleSuggestRemediation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg := request.GetString("status_message", "")
	if msg == "" {
		return mcp.NewToolResultError("status_message is required"), nil
	}

	suggestion := remediation.Suggest(msg)
	if suggestion == nil {
		return mcp.NewToolResultText("No remediation rule matches this message."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Action: %s\nDescription: %s\nConfidence: %.2f\nBased on: %s",
		suggestion.Action, suggestion.Description, suggestion.Confidence, suggestion.BasedOn)), nil
}

// renderReport formats a synthesis result for an agent-facing text reply.
func renderReport(result *models.RCASynthesisResult) string {
	var b strings.Builder
	b.WriteString(result.Summary + "\n")

	if rc := result.CausalAnalysis.RootCause; rc != nil {
		fmt.Fprintf(&b, "\nRoot cause span: %s (%s): %s\n", rc.SpanID, rc.Component, rc.Message)
	}

	for _, h := range result.Hypotheses {
		fmt.Fprintf(&b, "\n#%d [%s] confidence %.2f\n%s\n", h.Rank, h.Category, h.Confidence, h.Summary)
		if h.Pattern != nil {
			fmt.Fprintf(&b, "Pattern: %s (%d occurrences)\n", h.Pattern.Signature, h.Pattern.Occurrences)
		}
		if h.Remediation != nil {
			fmt.Fprintf(&b, "Suggested fix: %s: %s\n", h.Remediation.Action, h.Remediation.Description)
		}
	}
	return b.String()
}
