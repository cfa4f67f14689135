package rag

// Default window parameters for document splitting, in bytes.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk splits text into overlapping segments of at most size bytes.
//
// Each window [start, start+size) is cut at the nearest whitespace found by
// scanning backward from the window end through at most overlap bytes; the
// boundary character itself is dropped. When no whitespace falls in the
// lookback window the cut is forced at the full window and the next window
// re-scans the last overlap bytes. The final tail is emitted as-is, so only
// the last chunk may fall below the boundary policy. Empty input yields nil.
func Chunk(text string, size, overlap int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		breakAt := -1
		for i := end; i > end-overlap && i > start; i-- {
			if text[i] == '\n' || text[i] == ' ' {
				breakAt = i
				break
			}
		}

		if breakAt >= 0 {
			chunks = append(chunks, text[start:breakAt])
			start = breakAt + 1 // drop the boundary character
		} else {
			chunks = append(chunks, text[start:end])
			start = end - overlap
		}
	}
	return chunks
}
