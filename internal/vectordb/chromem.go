package vectordb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	chromem "github.com/philippgille/chromem-go"

	"github.com/nhanvu/docchat/internal/embeddings"
)

const (
	collectionName = "documents"
	snapshotFile   = "chromem.gob.gz"
)

// ChromemStore implements Store using chromem-go, persisting the whole
// index as a compressed gob snapshot inside dir.
//
// chromem-go reports cosine similarity (higher is better); this store
// exposes distance = 1 - similarity so that lower always means more
// similar, matching the ascending sort order of Query results.
type ChromemStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
	dir        string

	// mu serializes upserts and persistence. Queries go through
	// chromem's own internal locking and may run concurrently.
	mu sync.Mutex
}

// NewChromemStore creates a ChromemStore that snapshots into dir. The
// embedder is only a fallback for documents added without a precomputed
// vector; normal operation always supplies embeddings.
func NewChromemStore(embedder embeddings.Embedder, dir string) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(collectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
		dir:        dir,
	}, nil
}

func (s *ChromemStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		if rec.Text == "" {
			return fmt.Errorf("record %d has empty text", i)
		}
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}

		md := make(map[string]string, len(rec.Metadata)+1)
		for k, v := range rec.Metadata {
			md[k] = v
		}
		md[metadataKeySource] = rec.Source

		docs[i] = chromem.Document{
			ID:        id,
			Content:   rec.Text,
			Metadata:  md,
			Embedding: rec.Embedding,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("adding documents: %w", err)
	}
	return nil
}

func (s *ChromemStore) Query(ctx context.Context, embedding []float32, k int) ([]Match, error) {
	if k <= 0 {
		k = 5
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	// chromem returns results in descending similarity order, which is
	// ascending distance order.
	matches := make([]Match, len(results))
	for i, r := range results {
		md := make(map[string]string, len(r.Metadata))
		for key, v := range r.Metadata {
			if key == metadataKeySource {
				continue
			}
			md[key] = v
		}
		matches[i] = Match{
			Text:     r.Content,
			Source:   r.Metadata[metadataKeySource],
			Metadata: md,
			Distance: 1 - r.Similarity,
		}
	}

	return matches, nil
}

func (s *ChromemStore) DeleteBySource(ctx context.Context, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection.Count() == 0 {
		return nil
	}
	where := map[string]string{metadataKeySource: source}
	if err := s.collection.Delete(ctx, where, nil); err != nil {
		return fmt.Errorf("deleting records for %q: %w", source, err)
	}
	return nil
}

func (s *ChromemStore) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	if err := s.db.ExportToFile(filepath.Join(s.dir, snapshotFile), true, ""); err != nil {
		return fmt.Errorf("exporting index: %w", err)
	}
	return nil
}

func (s *ChromemStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, snapshotFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Nothing uploaded yet; the store stays empty.
		return nil
	}

	if err := s.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("importing index: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(collectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", collectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.collection.Count()
}
