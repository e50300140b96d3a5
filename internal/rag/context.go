package rag

import (
	"fmt"
	"strings"
)

const (
	articleLabel     = "ARTIKEL"
	sectionDelimiter = "\n\n---\n\n"
)

// AssembleContext renders the selected documents as the grounding block.
// Each section is labeled with the document's corpus position, so the
// citation tag the generator emits refers to corpus numbering.
func AssembleContext(ranked []RankedDocument) string {
	sections := make([]string, 0, len(ranked))
	for _, r := range ranked {
		sections = append(sections, fmt.Sprintf("%s %d:\nJUDUL: %s\nURL: %s\n\n%s",
			articleLabel,
			r.Position,
			oneLine(r.Title),
			strings.TrimSpace(r.URL),
			r.FullText,
		))
	}
	return strings.Join(sections, sectionDelimiter)
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
