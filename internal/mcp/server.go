// Package mcp exposes the retrieval engine as MCP tools over stdio, for
// assistant hosts that speak the protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/halcyard/recall/internal/retriever"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"recall_query": {
		def:     queryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleQuery },
	},
	"recall_category": {
		def:     categoryToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategory },
	},
	"recall_bydate": {
		def:     byDateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleByDate },
	},
	"recall_bytype": {
		def:     byTypeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleByType },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// NewServer creates an MCP server with the retrieval tools registered.
func NewServer(engine *retriever.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"recall",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(engine)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server using stdio transport.
func Run(engine *retriever.Engine, version string) error {
	return server.ServeStdio(NewServer(engine, version))
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
