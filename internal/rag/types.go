package rag

import "github.com/nhanvu/docchat/internal/vectordb"

// Result holds the passages retrieved for one query, already filtered by
// the distance threshold and sorted by ascending distance.
type Result struct {
	// Matches are the retained passages, most similar first.
	Matches []vectordb.Match
	// Sources lists the distinct document filenames that contributed at
	// least one match, in first-appearance order.
	Sources []string
}

// Empty reports whether retrieval found nothing usable.
func (r Result) Empty() bool {
	return len(r.Matches) == 0
}

// Answer is the final response to a chat query.
type Answer struct {
	// Response is the generated answer text.
	Response string `json:"response"`
	// Sources lists the documents whose content grounded the response.
	// Empty when no relevant context was found.
	Sources []string `json:"sources,omitempty"`
}
