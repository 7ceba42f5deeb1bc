package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/nhanvu/docchat/internal/chunker"
	"github.com/nhanvu/docchat/internal/config"
	"github.com/nhanvu/docchat/internal/embeddings"
	"github.com/nhanvu/docchat/internal/llm"
	"github.com/nhanvu/docchat/internal/vectordb"
)

// ErrEmptyDocument is returned by Ingest when the extracted text contains
// nothing indexable.
var ErrEmptyDocument = errors.New("document contains no indexable text")

// Service drives the two pipelines of the system: ingestion
// (chunk, embed, index, persist) and querying (retrieve, compose).
// One Service instance is shared by all requests; the embedder and index
// it wraps are safe for concurrent use.
type Service struct {
	splitter  *chunker.Splitter
	embedder  embeddings.Embedder
	store     vectordb.Store
	retriever *Retriever
	composer  *Composer
}

// NewService wires the pipeline from its parts. model is the generative
// model name passed through to the provider on every completion.
func NewService(cfg config.Retrieval, embedder embeddings.Embedder, store vectordb.Store, provider llm.Provider, model string) *Service {
	return &Service{
		splitter:  chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		embedder:  embedder,
		store:     store,
		retriever: NewRetriever(embedder, store, cfg.TopK, cfg.MaxDistance),
		composer:  NewComposer(provider, model),
	}
}

// Ingest indexes one document: split into chunks, embed every chunk,
// commit all records in a single upsert, then persist the index. The
// steps are all-or-nothing per document: failures before the upsert
// never touch the index, and a persist failure rolls the upsert back.
func (s *Service) Ingest(ctx context.Context, text, filename string) error {
	chunks := s.splitter.Split(text)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyDocument, filename)
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embedding chunks of %s: %w", filename, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks of %s", len(vectors), len(chunks), filename)
	}

	records := make([]vectordb.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vectordb.Record{
			Text:   chunk,
			Source: filename,
			Metadata: map[string]string{
				"chunk_index": strconv.Itoa(i),
			},
			Embedding: vectors[i],
		}
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("indexing %s: %w", filename, err)
	}
	if err := s.store.Persist(ctx); err != nil {
		// Roll the upsert back so a failed ingestion leaves nothing
		// discoverable in the live index.
		if delErr := s.store.DeleteBySource(ctx, filename); delErr != nil {
			log.Printf("rag: rolling back %s after persist failure: %v", filename, delErr)
		}
		return fmt.Errorf("persisting index after %s: %w", filename, err)
	}

	log.Printf("rag: indexed %s (%d chunks)", filename, len(records))
	return nil
}

// Answer runs the full query pipeline for one chat turn. Retrieval
// failures degrade to the "no relevant information" answer so a broken or
// empty index never breaks the chat; generation failures are returned to
// the caller.
func (s *Service) Answer(ctx context.Context, query string, allowedSources []string) (Answer, error) {
	result, err := s.retriever.Retrieve(ctx, query, allowedSources)
	if err != nil {
		log.Printf("rag: retrieval failed, answering without context: %v", err)
		result = Result{}
	}

	return s.composer.Compose(ctx, query, result)
}

// Delete removes every indexed chunk derived from filename and persists
// the change. Queries issued afterwards cannot surface the document.
func (s *Service) Delete(ctx context.Context, filename string) error {
	if err := s.store.DeleteBySource(ctx, filename); err != nil {
		return fmt.Errorf("removing records of %s: %w", filename, err)
	}
	if err := s.store.Persist(ctx); err != nil {
		return fmt.Errorf("persisting index after deleting %s: %w", filename, err)
	}
	return nil
}

// Search exposes raw retrieval without answer generation, for search
// endpoints and tools.
func (s *Service) Search(ctx context.Context, query string, allowedSources []string) (Result, error) {
	return s.retriever.Retrieve(ctx, query, allowedSources)
}
