package extractor

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// separators are tried in order when looking for a place to end a chunk.
var separators = []string{"\n\n", "\n", " "}

// Chunk is a contiguous slice of the extracted text. Start and End are rune
// offsets into that text; End is exclusive.
type Chunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Chunker splits text into overlapping chunks measured in characters.
type Chunker struct {
	size    int
	overlap int
}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split cuts text into chunks of at most size runes. A chunk ends after the
// last separator that leaves it longer than the overlap, or is hard-cut when
// there is none. Consecutive chunks share at most overlap runes.
func (c *Chunker) Split(text string) []Chunk {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + c.size
		if end >= n {
			end = n
		} else {
			end = c.boundary(runes, start, end)
		}

		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Text:  string(runes[start:end]),
			Start: start,
			End:   end,
		})
		if end == n {
			return chunks
		}

		start = nextStart(runes, end-c.overlap, end)
	}
}

// boundary returns the cut position in (start+overlap, limit]. Cutting past
// start+overlap guarantees the following chunk starts after this one.
func (c *Chunker) boundary(runes []rune, start, limit int) int {
	window := string(runes[start+c.overlap : limit])
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx < 0 {
			continue
		}
		cut := start + c.overlap + len([]rune(window[:idx])) + len([]rune(sep))
		if cut > start+c.overlap {
			return cut
		}
	}
	return limit
}

// nextStart moves from to just past the first whitespace before end, so an
// overlapping chunk does not begin mid-word.
func nextStart(runes []rune, from, end int) int {
	for i := from; i < end; i++ {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return from
}

// Merge joins ordered chunks, dropping the part of each chunk that overlaps
// its predecessor. For chunks produced by Split it returns the original text.
func Merge(chunks []Chunk) string {
	var b strings.Builder
	prevEnd := 0
	for i, chunk := range chunks {
		runes := []rune(chunk.Text)
		skip := 0
		if i > 0 && prevEnd > chunk.Start {
			skip = prevEnd - chunk.Start
		}
		if skip < len(runes) {
			b.WriteString(string(runes[skip:]))
		}
		if chunk.End > prevEnd {
			prevEnd = chunk.End
		}
	}
	return b.String()
}
