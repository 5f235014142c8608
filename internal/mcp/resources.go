package mcp

import (
	"context"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"layerguard/internal/engine/rulesdoc"
)

const rulesResourceURI = "layerguard://rules"

func registerResources(s *server.MCPServer, h *handlers) {
	s.AddResource(
		mcplib.NewResource(
			rulesResourceURI,
			"Architecture Rules",
			mcplib.WithResourceDescription("Layers, allowed imports and active rules for the project"),
			mcplib.WithMIMEType("text/markdown"),
		),
		h.handleRulesResource,
	)
}

func (h *handlers) handleRulesResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	cfg, err := h.svc.LoadConfig(h.root, h.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      rulesResourceURI,
			MIMEType: "text/markdown",
			Text:     rulesdoc.Render(cfg),
		},
	}, nil
}
