package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"layerguard/internal/core/app"
	"layerguard/internal/engine/rulesdoc"
	"layerguard/internal/shared/observability"
	"layerguard/internal/ui/report"
)

const (
	toolCheck = "layerguard_check"
	toolRules = "layerguard_rules"
	toolTrace = "layerguard_trace"
)

func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcplib.NewTool(toolCheck,
			mcplib.WithDescription("Run the architecture check on the project and return every violation"),
			mcplib.WithString("format", mcplib.Description("Output format: json or text (default: json)")),
			mcplib.WithBoolean("changed_only", mcplib.Description("Only report violations in files changed according to git")),
		),
		instrument(toolCheck, h.handleCheck),
	)

	s.AddTool(
		mcplib.NewTool(toolRules,
			mcplib.WithDescription("Return the architecture rules document: layers, allowed imports and active rules"),
			mcplib.WithBoolean("write", mcplib.Description("Also write the document to the configured rulesOutput path")),
		),
		instrument(toolRules, h.handleRules),
	)

	s.AddTool(
		mcplib.NewTool(toolTrace,
			mcplib.WithDescription("Find the shortest chain of imports from one project file to another"),
			mcplib.WithString("from",
				mcplib.Required(),
				mcplib.Description("Importing file, relative to the project root"),
			),
			mcplib.WithString("to",
				mcplib.Required(),
				mcplib.Description("Imported file, relative to the project root"),
			),
		),
		instrument(toolTrace, h.handleTrace),
	)
}

// instrument counts calls per tool and outcome.
func instrument(tool string, next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		res, err := next(ctx, request)
		outcome := "ok"
		if err != nil || (res != nil && res.IsError) {
			outcome = "error"
		}
		observability.MCPToolCallsTotal.WithLabelValues(tool, outcome).Inc()
		return res, err
	}
}

func (h *handlers) handleCheck(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	if !h.limiter.Allow(1) {
		return errorResult("rate limit exceeded: wait before requesting another check"), nil
	}
	format, _ := request.GetArguments()["format"].(string)
	changedOnly, _ := request.GetArguments()["changed_only"].(bool)

	rep, err := h.svc.Check(ctx, app.CheckRequest{
		Root:        h.root,
		ConfigPath:  h.configPath,
		ChangedOnly: changedOnly,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("check failed: %v", err)), nil
	}
	if format == "text" {
		var buf bytes.Buffer
		if err := report.WriteText(&buf, rep); err != nil {
			return nil, err
		}
		return textResult(buf.String()), nil
	}
	return jsonResult(rep)
}

func (h *handlers) handleRules(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	cfg, err := h.svc.LoadConfig(h.root, h.configPath)
	if err != nil {
		return errorResult(fmt.Sprintf("load config failed: %v", err)), nil
	}
	if write, _ := request.GetArguments()["write"].(bool); write {
		if _, err := rulesdoc.Write(h.root, cfg); err != nil {
			return errorResult(fmt.Sprintf("write failed: %v", err)), nil
		}
	}
	return textResult(rulesdoc.Render(cfg)), nil
}

func (h *handlers) handleTrace(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	from, err := request.RequireString("from")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	to, err := request.RequireString("to")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if !h.limiter.Allow(1) {
		return errorResult("rate limit exceeded: wait before requesting another trace"), nil
	}

	res, err := h.svc.Trace(ctx, app.TraceRequest{
		Root:       h.root,
		ConfigPath: h.configPath,
		From:       from,
		To:         to,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("trace failed: %v", err)), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
