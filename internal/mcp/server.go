// Package mcp exposes checks, the rules document and import tracing to AI
// coding assistants over the Model Context Protocol.
package mcp

import (
	"time"

	"github.com/mark3labs/mcp-go/server"

	"layerguard/internal/core/app"
	"layerguard/internal/shared/util"
	"layerguard/internal/shared/version"
)

// DefaultCheckInterval spaces out full-tree checks requested by a client.
const DefaultCheckInterval = 2 * time.Second

type Options struct {
	Root       string
	ConfigPath string
	Service    *app.Service
	// Limiter throttles layerguard_check and layerguard_trace. Nil uses one
	// check per DefaultCheckInterval with a burst of 3.
	Limiter *util.Limiter
}

type handlers struct {
	root       string
	configPath string
	svc        *app.Service
	limiter    *util.Limiter
}

// NewServer builds an MCP server with every layerguard tool and resource
// registered for one project root.
func NewServer(opts Options) *server.MCPServer {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Service == nil {
		opts.Service = app.NewService(app.Options{})
	}
	if opts.Limiter == nil {
		opts.Limiter = util.NewLimiterEvery(DefaultCheckInterval, 3)
	}
	h := &handlers{
		root:       opts.Root,
		configPath: opts.ConfigPath,
		svc:        opts.Service,
		limiter:    opts.Limiter,
	}

	s := server.NewMCPServer(
		"layerguard",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)
	registerTools(s, h)
	registerResources(s, h)
	return s
}

// ServeStdio runs the server on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
