// Package mcpServer exposes the assistant as Model Context Protocol tools so an external agent
// runtime can route document and web questions here.
package mcpServer

import (
	"context"

	"github.com/akolanti/insightRAG/internal/rag"
	"github.com/akolanti/insightRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

type Server struct {
	ragService rag.Service
	server     *mcp.Server
	logger     *logger_i.Logger
}

func New(ragService rag.Service) *Server {
	s := &Server{
		ragService: ragService,
		server:     mcp.NewServer(&mcp.Implementation{Name: "insight-rag", Version: Version}, nil),
		logger:     logger_i.NewLogger("MCPServer"),
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session on t, used with in-memory transports.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}
