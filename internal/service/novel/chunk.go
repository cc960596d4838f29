package novel

// DefaultChunkSize is the per-chunk byte limit pages are rendered into.
const DefaultChunkSize = 2048

// SplitChunks splits s into contiguous pieces of at most size bytes, in
// order, such that concatenating them reproduces s exactly. The split is
// on raw byte offsets, so a multi-byte rune can straddle two chunks;
// callers that care about rune integrity must size pages accordingly.
func SplitChunks(s string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if s == "" {
		return nil
	}

	chunks := make([]string, 0, (len(s)+size-1)/size)
	for start := 0; start < len(s); start += size {
		end := start + size
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[start:end])
	}
	return chunks
}
