package ingest

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wayfarerhq/wayfarer/pkg/index"
)

// DefaultChunkSize is the target chunk length in runes.
const DefaultChunkSize = 1000

// SplitDocument breaks the document into passages of at most chunkSize
// runes, preferring paragraph then line boundaries. Passage IDs are
// "url#n" so re-ingesting a changed page replaces its chunks in place.
func SplitDocument(doc *Document, chunkSize int) []index.Passage {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	chunks := splitText(doc.Text, chunkSize)

	passages := make([]index.Passage, 0, len(chunks))
	for i, chunk := range chunks {
		passages = append(passages, index.Passage{
			ID:        fmt.Sprintf("%s#%d", doc.URL, i),
			Text:      chunk,
			SourceURL: doc.URL,
			Title:     doc.Title,
			Section:   fmt.Sprintf("Section %d", i+1),
		})
	}
	return passages
}

// ContextualText is the chunk text prefixed with its document context, used
// as the embedding input so isolated chunks keep their provenance.
func ContextualText(p index.Passage) string {
	if p.Title == "" {
		return fmt.Sprintf("%s: %s", p.Section, p.Text)
	}
	return fmt.Sprintf("%s - %s: %s", p.Title, p.Section, p.Text)
}

func splitText(text string, chunkSize int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			chunks = append(chunks, trimmed)
		}
		current.Reset()
		currentLen = 0
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		plen := utf8.RuneCountInString(paragraph)
		if currentLen > 0 && currentLen+plen+1 > chunkSize {
			flush()
		}

		if plen > chunkSize {
			flush()
			chunks = append(chunks, splitRunes(paragraph, chunkSize)...)
			continue
		}

		if currentLen > 0 {
			current.WriteString("\n")
			currentLen++
		}
		current.WriteString(paragraph)
		currentLen += plen
	}
	flush()

	return chunks
}

// splitRunes hard-splits an oversized paragraph on rune boundaries.
func splitRunes(text string, chunkSize int) []string {
	runes := []rune(text)

	var chunks []string
	for start := 0; start < len(runes); start += chunkSize {
		end := min(start+chunkSize, len(runes))
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
