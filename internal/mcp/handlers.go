package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nhanvu/docchat/internal/vectordb"
)

// handleSearchDocuments performs semantic search over the document index.
func (s *Server) handleSearchDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	var sources []string
	if source := request.GetString("source", ""); source != "" {
		sources = []string{source}
	}

	result, err := s.rag.Search(ctx, query, sources)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	matches := result.Matches
	if len(matches) > limit {
		matches = matches[:limit]
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText("No relevant passages found. Upload documents first, or try a different query."), nil
	}

	return mcp.NewToolResultText(vectordb.FormatMatches(matches)), nil
}

// handleAskDocuments runs the full question-answering pipeline.
func (s *Server) handleAskDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}

	var sources []string
	if source := request.GetString("source", ""); source != "" {
		sources = []string{source}
	}

	answer, err := s.rag.Answer(ctx, question, sources)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answering failed: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString(answer.Response)
	if len(answer.Sources) > 0 {
		sb.WriteString("\n\nSources: ")
		sb.WriteString(strings.Join(answer.Sources, ", "))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// handleListDocuments lists the registered documents.
func (s *Server) handleListDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}

	if len(docs) == 0 {
		return mcp.NewToolResultText("No documents uploaded yet."), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d document(s):\n", len(docs)))
	for _, doc := range docs {
		sb.WriteString(fmt.Sprintf("- %s (%d bytes, uploaded %s)\n",
			doc.Filename, doc.Size, doc.UploadedAt.Format("2006-01-02 15:04")))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
