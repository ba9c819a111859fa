package chunker

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"docchat/internal/domain"
)

// DefaultChunkSize and DefaultOverlap are the splitting parameters used
// for embedding-sized chunks.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// defaultSeparators are tried in priority order: paragraph break, line
// break, space, then a character-level fallback.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// RecursiveCharacterChunker splits text by a priority-ordered list of
// separators into chunks of at most chunkSize runes, with overlap runes
// shared between consecutive chunks of the same document. Separators stay
// attached to the preceding piece, so concatenating the chunks (minus the
// overlap) reconstructs the source text exactly.
type RecursiveCharacterChunker struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewRecursiveCharacter(chunkSize, overlap int) *RecursiveCharacterChunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &RecursiveCharacterChunker{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split chunks each document in order. All chunks of one document appear
// in original-text order before chunks of the next document, and each
// chunk inherits the document's source path.
func (c *RecursiveCharacterChunker) Split(documents []domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	for _, doc := range documents {
		for i, text := range c.splitText(doc.Text) {
			chunks = append(chunks, domain.Chunk{
				Text: text,
				Metadata: map[string]string{
					"source":      doc.Source,
					"chunk_index": strconv.Itoa(i),
				},
			})
		}
	}
	return chunks, nil
}

func (c *RecursiveCharacterChunker) splitText(text string) []string {
	if text == "" {
		return nil
	}
	pieces := c.splitRecursive(text, c.separators)
	return c.merge(pieces)
}

// splitRecursive cuts text into pieces no longer than chunkSize runes,
// trying separators in priority order. The rune-level fallback guarantees
// progress even when no separator reduces the size.
func (c *RecursiveCharacterChunker) splitRecursive(text string, separators []string) []string {
	if utf8.RuneCountInString(text) <= c.chunkSize {
		return []string{text}
	}
	if len(separators) == 0 {
		return splitRunes(text, c.chunkSize)
	}
	sep := separators[0]
	rest := separators[1:]
	if sep == "" {
		return splitRunes(text, c.chunkSize)
	}
	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return c.splitRecursive(text, rest)
	}
	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= c.chunkSize {
			out = append(out, part)
		} else {
			out = append(out, c.splitRecursive(part, rest)...)
		}
	}
	return out
}

func splitRunes(text string, size int) []string {
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// merge greedily packs pieces into chunks of at most chunkSize runes and
// re-seeds each new chunk with the trailing pieces of the previous one,
// up to overlap runes.
func (c *RecursiveCharacterChunker) merge(pieces []string) []string {
	var chunks []string
	var current []string
	currentLen := 0
	for _, piece := range pieces {
		pieceLen := utf8.RuneCountInString(piece)
		if currentLen+pieceLen > c.chunkSize && currentLen > 0 {
			chunks = append(chunks, strings.Join(current, ""))
			var carry []string
			carryLen := 0
			for i := len(current) - 1; i >= 0; i-- {
				l := utf8.RuneCountInString(current[i])
				if carryLen+l > c.overlap || carryLen+l+pieceLen > c.chunkSize {
					break
				}
				carry = append([]string{current[i]}, carry...)
				carryLen += l
			}
			current = carry
			currentLen = carryLen
		}
		current = append(current, piece)
		currentLen += pieceLen
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, ""))
	}
	return chunks
}
