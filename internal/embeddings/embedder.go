package embeddings

import "context"

// Embedder maps text to fixed-dimension vectors. Chunks indexed at upload
// time and queries at chat time must go through the same Embedder instance
// so both live in the same vector space. Implementations are read-only
// after construction and safe for concurrent use.
type Embedder interface {
	// Embed generates one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the length of the vectors this embedder produces.
	Dimensions() int

	// Name returns the model identifier.
	Name() string
}
