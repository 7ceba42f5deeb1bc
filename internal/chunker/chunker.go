package chunker

import "strings"

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 4000
	// DefaultOverlap is the number of trailing characters of a chunk
	// repeated at the start of the next one.
	DefaultOverlap = 400
)

// Splitter breaks document text into bounded, overlapping chunks.
//
// Text is first split on newlines; adjacent lines are packed together until
// the chunk size is reached. A single line longer than the chunk size is cut
// at the size boundary. Every chunk after the first starts with the trailing
// overlap characters of the previous chunk, so content near a boundary
// appears in both neighbors. Splitting is deterministic: the same input
// always produces the same chunk sequence.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter creates a Splitter with the given chunk size and overlap,
// both in characters. Non-positive size falls back to the default, and the
// overlap is clamped below the size so splitting always advances.
func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &Splitter{size: size, overlap: overlap}
}

// Split returns the ordered chunk sequence for text. Empty or
// whitespace-only input yields no chunks. Each returned chunk is non-empty
// and at most size+overlap characters long.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := s.pack(strings.Split(text, "\n"))
	if len(pieces) == 0 {
		return nil
	}

	// Overlap pass: prepend the tail of the previous chunk to each piece.
	chunks := make([]string, 0, len(pieces))
	chunks = append(chunks, pieces[0])
	for i := 1; i < len(pieces); i++ {
		prev := []rune(chunks[i-1])
		tail := ""
		if len(prev) > s.overlap {
			tail = string(prev[len(prev)-s.overlap:])
		} else {
			tail = string(prev)
		}
		chunks = append(chunks, tail+pieces[i])
	}
	return chunks
}

// pack joins lines into pieces of at most size characters, hard-cutting
// lines that are longer than the size on their own.
func (s *Splitter) pack(lines []string) []string {
	var pieces []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		piece := strings.Join(current, "\n")
		if strings.TrimSpace(piece) != "" {
			pieces = append(pieces, piece)
		}
		current = nil
		currentLen = 0
	}

	for _, line := range lines {
		runes := []rune(line)

		if len(runes) > s.size {
			flush()
			for start := 0; start < len(runes); start += s.size {
				end := start + s.size
				if end > len(runes) {
					end = len(runes)
				}
				cut := string(runes[start:end])
				if strings.TrimSpace(cut) != "" {
					pieces = append(pieces, cut)
				}
			}
			continue
		}

		lineLen := len(runes) + 1 // +1 for the joining newline
		if currentLen+lineLen > s.size && len(current) > 0 {
			flush()
		}
		current = append(current, line)
		currentLen += lineLen
	}
	flush()

	return pieces
}
