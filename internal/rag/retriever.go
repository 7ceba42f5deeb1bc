package rag

import (
	"context"
	"fmt"

	"github.com/nhanvu/docchat/internal/embeddings"
	"github.com/nhanvu/docchat/internal/vectordb"
)

// Retriever finds the passages most relevant to a query. It embeds the
// query with the same model used at ingestion time, fetches the top-k
// nearest records, and drops anything above the distance threshold so that
// near-but-unrelated records cannot leak into the answer context.
type Retriever struct {
	embedder    embeddings.Embedder
	store       vectordb.Store
	topK        int
	maxDistance float32
}

// NewRetriever creates a Retriever over the given embedder and index.
func NewRetriever(embedder embeddings.Embedder, store vectordb.Store, topK int, maxDistance float32) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		embedder:    embedder,
		store:       store,
		topK:        topK,
		maxDistance: maxDistance,
	}
}

// Retrieve returns the relevant passages for query. When allowedSources is
// non-empty, matches from any other document are dropped after retrieval.
// An index with no records yields an empty Result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, allowedSources []string) (Result, error) {
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return Result{}, fmt.Errorf("embedding query: %w", err)
	}
	if len(vecs) == 0 {
		return Result{}, fmt.Errorf("embedder returned no vector for query")
	}

	matches, err := r.store.Query(ctx, vecs[0], r.topK)
	if err != nil {
		return Result{}, fmt.Errorf("querying index: %w", err)
	}

	allowed := make(map[string]bool, len(allowedSources))
	for _, s := range allowedSources {
		allowed[s] = true
	}

	var result Result
	seen := make(map[string]bool)
	for _, m := range matches {
		if m.Distance > r.maxDistance {
			// Matches arrive in ascending distance order, so
			// everything after this one is even less relevant.
			break
		}
		if len(allowed) > 0 && !allowed[m.Source] {
			continue
		}
		result.Matches = append(result.Matches, m)
		if !seen[m.Source] {
			seen[m.Source] = true
			result.Sources = append(result.Sources, m.Source)
		}
	}

	return result, nil
}
