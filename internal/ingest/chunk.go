package ingest

import "strings"

// Chunk is one window of a document. Index is its position in the full window
// sequence, so ids stay stable when blank windows are dropped.
type Chunk struct {
	Index int
	Text  string
}

// ChunkText splits text into rune windows of size runes, each starting
// size-overlap runes after the previous one. Whitespace-only windows are dropped.
func ChunkText(text string, size, overlap int) []Chunk {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []Chunk
	for start, idx := 0, 0; start < len(runes); start, idx = start+step, idx+1 {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		window := string(runes[start:end])
		if strings.TrimSpace(window) != "" {
			chunks = append(chunks, Chunk{Index: idx, Text: window})
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
