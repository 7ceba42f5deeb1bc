package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/nhanvu/docchat/internal/config"
	"github.com/nhanvu/docchat/internal/llm"
	"github.com/nhanvu/docchat/internal/vectordb"
)

// mockEmbedder produces deterministic, normalized character-hash vectors.
// Texts sharing characters produce nearby vectors, which is enough to make
// nearest-neighbor behavior predictable in tests.
type mockEmbedder struct {
	dims int
	err  error
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	results := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, m.dims)
		for j, ch := range text {
			vec[(int(ch)+j)%m.dims] += 1.0
		}
		var norm float64
		for _, v := range vec {
			norm += float64(v * v)
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			for j := range vec {
				vec[j] = float32(float64(vec[j]) / norm)
			}
		}
		results[i] = vec
	}
	return results, nil
}

func (m *mockEmbedder) Dimensions() int { return m.dims }
func (m *mockEmbedder) Name() string    { return "mock" }

// mockProvider records completion calls and returns a canned answer.
type mockProvider struct {
	mu    sync.Mutex
	calls []llm.CompletionRequest
	reply string
	err   error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return nil, m.err
	}
	return &llm.CompletionResponse{Content: m.reply, FinishReason: "stop"}, nil
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testRetrievalConfig() config.Retrieval {
	return config.Retrieval{
		ChunkSize:    200,
		ChunkOverlap: 20,
		TopK:         5,
		MaxDistance:  0.8,
	}
}

func newTestService(t *testing.T, cfg config.Retrieval) (*Service, *mockEmbedder, *mockProvider) {
	t.Helper()
	embedder := &mockEmbedder{dims: 64}
	store, err := vectordb.NewChromemStore(embedder, t.TempDir())
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	provider := &mockProvider{reply: "Grounded answer based on the documents."}
	svc := NewService(cfg, embedder, store, provider, "mock-model")
	return svc, embedder, provider
}

func TestIngestAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, testRetrievalConfig())

	text := "The vacation policy grants twenty days of paid leave per year."
	if err := svc.Ingest(ctx, text, "policy.pdf"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Querying with text copied verbatim from the document must surface it.
	result, err := svc.Search(ctx, text, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Empty() {
		t.Fatal("expected a match for verbatim document text")
	}
	if result.Matches[0].Source != "policy.pdf" {
		t.Errorf("best match source: got %q, want policy.pdf", result.Matches[0].Source)
	}
	if len(result.Sources) != 1 || result.Sources[0] != "policy.pdf" {
		t.Errorf("sources: got %v, want [policy.pdf]", result.Sources)
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	svc, _, _ := newTestService(t, testRetrievalConfig())

	err := svc.Ingest(context.Background(), "   \n\n  ", "blank.txt")
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestIngestAbortsBeforeUpsertOnEmbedFailure(t *testing.T) {
	ctx := context.Background()
	cfg := testRetrievalConfig()
	embedder := &mockEmbedder{dims: 64}
	store, err := vectordb.NewChromemStore(embedder, t.TempDir())
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	svc := NewService(cfg, embedder, store, &mockProvider{reply: "x"}, "mock-model")

	embedder.err = errors.New("model unavailable")
	if err := svc.Ingest(ctx, "some document text", "doc.txt"); err == nil {
		t.Fatal("expected ingest failure")
	}

	// Nothing may be visible in the index after a failed ingestion.
	if count := store.Count(); count != 0 {
		t.Errorf("failed ingest left %d records in the index", count)
	}
}

// persistFailStore wraps a real store but refuses to persist.
type persistFailStore struct {
	vectordb.Store
	persistErr error
}

func (s *persistFailStore) Persist(context.Context) error { return s.persistErr }

func TestIngestRollsBackOnPersistFailure(t *testing.T) {
	ctx := context.Background()
	cfg := testRetrievalConfig()
	embedder := &mockEmbedder{dims: 64}
	inner, err := vectordb.NewChromemStore(embedder, t.TempDir())
	if err != nil {
		t.Fatalf("NewChromemStore: %v", err)
	}
	store := &persistFailStore{Store: inner, persistErr: errors.New("disk full")}
	svc := NewService(cfg, embedder, store, &mockProvider{reply: "x"}, "mock-model")

	text := "the travel policy covers flights and hotels"
	if err := svc.Ingest(ctx, text, "policy.txt"); err == nil {
		t.Fatal("expected ingest failure when persist fails")
	}

	// The upsert preceding the failed persist must have been rolled back.
	if count := inner.Count(); count != 0 {
		t.Errorf("failed ingestion left %d records discoverable", count)
	}
	result, err := svc.Search(ctx, text, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range result.Matches {
		if m.Source == "policy.txt" {
			t.Errorf("failed ingestion left document retrievable: %q", m.Text)
		}
	}
}

func TestIngestPreservesChunkOrder(t *testing.T) {
	ctx := context.Background()
	cfg := testRetrievalConfig()
	cfg.ChunkSize = 50
	cfg.ChunkOverlap = 5
	svc, _, _ := newTestService(t, cfg)

	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta\n", 10)
	if err := svc.Ingest(ctx, text, "long.txt"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	result, err := svc.Search(ctx, "alpha beta gamma delta epsilon zeta eta theta", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range result.Matches {
		if m.Metadata["chunk_index"] == "" {
			t.Errorf("record missing chunk_index metadata: %+v", m.Metadata)
		}
	}
}

func TestSearchOrderingIsStable(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, testRetrievalConfig())

	docs := map[string]string{
		"a.txt": "cats are independent animals that sleep a lot",
		"b.txt": "dogs are loyal animals that need daily walks",
		"c.txt": "parrots are clever birds that mimic speech",
	}
	for name, text := range docs {
		if err := svc.Ingest(ctx, text, name); err != nil {
			t.Fatalf("Ingest %s: %v", name, err)
		}
	}

	first, err := svc.Search(ctx, "animals that people keep at home", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := 0; i < 3; i++ {
		again, err := svc.Search(ctx, "animals that people keep at home", nil)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(again.Matches) != len(first.Matches) {
			t.Fatalf("run %d: got %d matches, want %d", i, len(again.Matches), len(first.Matches))
		}
		for j := range first.Matches {
			if again.Matches[j].Text != first.Matches[j].Text {
				t.Fatalf("run %d: match %d differs", i, j)
			}
		}
	}
}

func TestSearchRespectsDistanceThreshold(t *testing.T) {
	ctx := context.Background()
	cfg := testRetrievalConfig()
	cfg.MaxDistance = 0.2
	svc, _, _ := newTestService(t, cfg)

	if err := svc.Ingest(ctx, "quarterly financial report with revenue figures", "report.txt"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	result, err := svc.Search(ctx, "zzzzzz 99999 @@@@@", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range result.Matches {
		if m.Distance > cfg.MaxDistance {
			t.Errorf("match distance %f exceeds threshold %f", m.Distance, cfg.MaxDistance)
		}
	}
}

func TestSearchScopedToAllowedSources(t *testing.T) {
	ctx := context.Background()
	cfg := testRetrievalConfig()
	cfg.MaxDistance = 1.0
	svc, _, _ := newTestService(t, cfg)

	if err := svc.Ingest(ctx, "the office opens at nine in the morning", "a.txt"); err != nil {
		t.Fatalf("Ingest a: %v", err)
	}
	if err := svc.Ingest(ctx, "the office closes at six in the evening", "b.txt"); err != nil {
		t.Fatalf("Ingest b: %v", err)
	}

	// Query with b's exact text but scope to a: b must never appear.
	result, err := svc.Search(ctx, "the office closes at six in the evening", []string{"a.txt"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range result.Matches {
		if m.Source == "b.txt" {
			t.Errorf("scoped search leaked excluded source: %q", m.Text)
		}
	}
	for _, s := range result.Sources {
		if s == "b.txt" {
			t.Errorf("scoped search listed excluded source")
		}
	}
}

func TestDeleteRemovesDocumentFromRetrieval(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, testRetrievalConfig())

	text := "the secret launch date is in november"
	if err := svc.Ingest(ctx, text, "secret.txt"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if err := svc.Delete(ctx, "secret.txt"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	result, err := svc.Search(ctx, text, nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for _, m := range result.Matches {
		if m.Source == "secret.txt" {
			t.Errorf("deleted document still retrievable: %q", m.Text)
		}
	}
}

func TestAnswerEmptyCorpus(t *testing.T) {
	svc, _, provider := newTestService(t, testRetrievalConfig())

	answer, err := svc.Answer(context.Background(), "what is the vacation policy?", nil)
	if err != nil {
		t.Fatalf("Answer on empty corpus: %v", err)
	}
	if answer.Response != noInformationAnswer {
		t.Errorf("expected the no-information answer, got %q", answer.Response)
	}
	if len(answer.Sources) != 0 {
		t.Errorf("expected no sources, got %v", answer.Sources)
	}
	if provider.callCount() != 0 {
		t.Error("generative provider must not be called without context")
	}
}

func TestAnswerDegradesOnRetrievalFailure(t *testing.T) {
	ctx := context.Background()
	svc, embedder, provider := newTestService(t, testRetrievalConfig())

	if err := svc.Ingest(ctx, "some indexed content", "doc.txt"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Query-time embedding failure must yield the graceful answer, not
	// an error.
	embedder.err = errors.New("embedding backend down")
	answer, err := svc.Answer(ctx, "anything", nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Response != noInformationAnswer {
		t.Errorf("expected graceful degradation, got %q", answer.Response)
	}
	if provider.callCount() != 0 {
		t.Error("provider must not be called when retrieval fails")
	}
}

func TestAnswerSurfacesGenerationFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, provider := newTestService(t, testRetrievalConfig())

	text := "the handbook describes the onboarding process"
	if err := svc.Ingest(ctx, text, "handbook.txt"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	provider.err = errors.New("model timeout")
	if _, err := svc.Answer(ctx, text, nil); err == nil {
		t.Fatal("expected generation failure to propagate")
	}
}

func TestAnswerReturnsSourcesWithResponse(t *testing.T) {
	ctx := context.Background()
	svc, _, provider := newTestService(t, testRetrievalConfig())

	text := "the handbook describes the onboarding process"
	if err := svc.Ingest(ctx, text, "handbook.txt"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	answer, err := svc.Answer(ctx, text, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Response != provider.reply {
		t.Errorf("response: got %q, want %q", answer.Response, provider.reply)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "handbook.txt" {
		t.Errorf("sources: got %v, want [handbook.txt]", answer.Sources)
	}
}
