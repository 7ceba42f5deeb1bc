package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/nhanvu/docchat/internal/docstore"
	"github.com/nhanvu/docchat/internal/rag"
	"github.com/nhanvu/docchat/internal/vectordb"
)

// mockRAG implements RAGService for testing.
type mockRAG struct {
	result    rag.Result
	answer    rag.Answer
	lastQuery string
	sources   []string
}

func (m *mockRAG) Search(_ context.Context, query string, allowedSources []string) (rag.Result, error) {
	m.lastQuery = query
	m.sources = allowedSources
	return m.result, nil
}

func (m *mockRAG) Answer(_ context.Context, query string, allowedSources []string) (rag.Answer, error) {
	m.lastQuery = query
	m.sources = allowedSources
	return m.answer, nil
}

func newTestServer(t *testing.T, mock *mockRAG) *Server {
	t.Helper()
	docs, err := docstore.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { docs.Close() })
	return NewServer(mock, docs)
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"search_documents", searchDocumentsTool, "search_documents"},
		{"ask_documents", askDocumentsTool, "ask_documents"},
		{"list_documents", listDocumentsTool, "list_documents"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestHandleSearchDocuments(t *testing.T) {
	mock := &mockRAG{result: rag.Result{
		Matches: []vectordb.Match{
			{Text: "budget details", Source: "budget.xlsx", Distance: 0.1},
			{Text: "forecast details", Source: "forecast.pdf", Distance: 0.2},
		},
		Sources: []string{"budget.xlsx", "forecast.pdf"},
	}}
	srv := newTestServer(t, mock)
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "budget"}

		result, err := srv.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := textContent(t, result)
		if !strings.Contains(text, "budget details") || !strings.Contains(text, "budget.xlsx") {
			t.Errorf("result missing passage or source:\n%s", text)
		}
	})

	t.Run("limit truncates", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "budget", "limit": 1}

		result, err := srv.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := textContent(t, result)
		if strings.Contains(text, "forecast details") {
			t.Errorf("limit 1 returned more than one passage:\n%s", text)
		}
	})

	t.Run("source filter forwarded", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "budget", "source": "budget.xlsx"}

		if _, err := srv.handleSearchDocuments(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(mock.sources) != 1 || mock.sources[0] != "budget.xlsx" {
			t.Errorf("allowed sources: %v", mock.sources)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty index", func(t *testing.T) {
		emptySrv := newTestServer(t, &mockRAG{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"query": "anything"}

		result, err := emptySrv.handleSearchDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Error("empty results should not be an error")
		}
	})
}

func TestHandleAskDocuments(t *testing.T) {
	mock := &mockRAG{answer: rag.Answer{
		Response: "the budget is 42",
		Sources:  []string{"budget.xlsx"},
	}}
	srv := newTestServer(t, mock)
	ctx := context.Background()

	t.Run("answer with sources", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"question": "what is the budget?"}

		result, err := srv.handleAskDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := textContent(t, result)
		if !strings.Contains(text, "the budget is 42") {
			t.Errorf("result missing answer:\n%s", text)
		}
		if !strings.Contains(text, "Sources: budget.xlsx") {
			t.Errorf("result missing sources:\n%s", text)
		}
	})

	t.Run("missing question", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleAskDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing question")
		}
	})
}

func TestHandleListDocuments(t *testing.T) {
	srv := newTestServer(t, &mockRAG{})
	ctx := context.Background()

	t.Run("empty registry", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		result, err := srv.handleListDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := textContent(t, result)
		if !strings.Contains(text, "No documents") {
			t.Errorf("unexpected output: %q", text)
		}
	})

	t.Run("with documents", func(t *testing.T) {
		if err := srv.docs.Save(ctx, docstore.Document{Filename: "report.pdf", Size: 1234}); err != nil {
			t.Fatalf("Save: %v", err)
		}

		req := mcp.CallToolRequest{}
		result, err := srv.handleListDocuments(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := textContent(t, result)
		if !strings.Contains(text, "report.pdf") {
			t.Errorf("listing missing document: %q", text)
		}
	})
}
