package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layerguard/internal/core/app"
	"layerguard/internal/engine/rules"
	"layerguard/internal/shared/util"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"layerguard.json":   `{"layers": {"domain": {"allowedImports": []}, "ui": {"allowedImports": []}}}`,
		"src/ui/Foo.ts":     "import { bar } from '../domain/Bar';\n",
		"src/domain/Bar.ts": "export const bar = 1;\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newHandlers(t *testing.T, root string, limiter *util.Limiter) *handlers {
	t.Helper()
	if limiter == nil {
		limiter = util.NewLimiter(1000, 1000)
	}
	return &handlers{
		root:    root,
		svc:     app.NewService(app.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}),
		limiter: limiter,
	}
}

func callRequest(name string, args map[string]any) mcplib.CallToolRequest {
	var req mcplib.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestServerRegistersTools(t *testing.T) {
	s := NewServer(Options{Root: t.TempDir()})
	require.NotNil(t, s)

	tools := s.ListTools()
	for _, name := range []string{toolCheck, toolRules, toolTrace} {
		_, ok := tools[name]
		assert.True(t, ok, "tool %q should be registered", name)
	}
	assert.Len(t, tools, 3)
}

func TestHandleCheck(t *testing.T) {
	h := newHandlers(t, writeProject(t), nil)

	res, err := h.handleCheck(context.Background(), callRequest(toolCheck, nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var rep app.Report
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &rep))
	assert.False(t, rep.Passed)
	require.Len(t, rep.Violations, 1)
	assert.Equal(t, rules.IDLayerBoundary, rep.Violations[0].RuleID)

	res, err = h.handleCheck(context.Background(), callRequest(toolCheck, map[string]any{"format": "text"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "src/ui/Foo.ts:1:1 - ")
}

func TestHandleCheckReportsConfigErrors(t *testing.T) {
	h := newHandlers(t, t.TempDir(), nil)
	res, err := h.handleCheck(context.Background(), callRequest(toolCheck, nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "CONFIG_ERROR")
}

func TestHandleCheckRateLimited(t *testing.T) {
	h := newHandlers(t, writeProject(t), util.NewLimiter(0.001, 1))

	res, err := h.handleCheck(context.Background(), callRequest(toolCheck, nil))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = h.handleCheck(context.Background(), callRequest(toolCheck, nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "rate limit")
}

func TestHandleRules(t *testing.T) {
	root := writeProject(t)
	h := newHandlers(t, root, nil)

	res, err := h.handleRules(context.Background(), callRequest(toolRules, nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "### Domain (`domain/`)")
	assert.NoFileExists(t, filepath.Join(root, ".cursor", "rules", "architecture.mdc"))

	_, err = h.handleRules(context.Background(), callRequest(toolRules, map[string]any{"write": true}))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, ".cursor", "rules", "architecture.mdc"))
}

func TestHandleTrace(t *testing.T) {
	h := newHandlers(t, writeProject(t), nil)

	res, err := h.handleTrace(context.Background(), callRequest(toolTrace, map[string]any{
		"from": "src/ui/Foo.ts",
		"to":   "src/domain/Bar.ts",
	}))
	require.NoError(t, err)
	var trace app.TraceResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &trace))
	assert.True(t, trace.Found)
	assert.Equal(t, []string{"src/ui/Foo.ts", "src/domain/Bar.ts"}, trace.Chain)

	res, err = h.handleTrace(context.Background(), callRequest(toolTrace, map[string]any{"from": "src/ui/Foo.ts"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRulesResource(t *testing.T) {
	h := newHandlers(t, writeProject(t), nil)
	contents, err := h.handleRulesResource(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, rulesResourceURI, text.URI)
	assert.Contains(t, text.Text, "# Architecture Rules")

	_, err = newHandlers(t, t.TempDir(), nil).handleRulesResource(context.Background(), mcplib.ReadResourceRequest{})
	assert.Error(t, err)
}
