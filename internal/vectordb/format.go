package vectordb

import (
	"fmt"
	"strings"
)

// FormatMatches renders query matches as human-readable text.
func FormatMatches(matches []Match) string {
	if len(matches) == 0 {
		return "No matching passages found."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d passage(s):\n\n", len(matches)))

	for i, m := range matches {
		sb.WriteString(fmt.Sprintf("--- Passage %d (distance: %.4f) ---\n", i+1, m.Distance))
		if m.Source != "" {
			sb.WriteString(fmt.Sprintf("Source: %s\n", m.Source))
		}
		sb.WriteString("\n")
		sb.WriteString(m.Text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
