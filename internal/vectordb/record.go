package vectordb

// Record is one (embedding, chunk text, metadata) triple stored in the
// index. Records are never mutated after insertion; re-ingesting a document
// writes new records.
type Record struct {
	// ID uniquely identifies the record. Assigned on upsert when empty.
	ID string
	// Text is the chunk content. Always non-empty.
	Text string
	// Source is the filename of the originating document.
	Source string
	// Metadata holds additional key-value pairs persisted with the record.
	Metadata map[string]string
	// Embedding is the precomputed vector for Text.
	Embedding []float32
}

// Match is a query hit: a stored record paired with its distance from the
// query vector. Distance is 1 - cosine similarity, so lower means more
// similar; 0 is an exact directional match.
type Match struct {
	Text     string
	Source   string
	Metadata map[string]string
	Distance float32
}

// metadataKeySource is the reserved metadata key carrying Record.Source.
const metadataKeySource = "source"
