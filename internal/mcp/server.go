// Package mcp exposes the document index to AI agents over the Model
// Context Protocol.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nhanvu/docchat/internal/docstore"
	"github.com/nhanvu/docchat/internal/rag"
)

// Version is set via ldflags at build time.
var Version = "dev"

// RAGService is the slice of the pipeline the MCP tools need.
// *rag.Service satisfies it.
type RAGService interface {
	Search(ctx context.Context, query string, allowedSources []string) (rag.Result, error)
	Answer(ctx context.Context, query string, allowedSources []string) (rag.Answer, error)
}

// Server wraps an MCP server that exposes document search and
// question-answering tools.
type Server struct {
	rag  RAGService
	docs *docstore.Store
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(ragService RAGService, docs *docstore.Store) *Server {
	s := &Server{
		rag:  ragService,
		docs: docs,
	}

	s.mcp = server.NewMCPServer(
		"docchat",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
	s.mcp.AddTool(askDocumentsTool, s.handleAskDocuments)
	s.mcp.AddTool(listDocumentsTool, s.handleListDocuments)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
