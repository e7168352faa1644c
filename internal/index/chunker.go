package index

import (
	"fmt"

	"openio-assistant/internal/service"
)

// Split cuts a document into overlapping fixed-size windows. Offsets are
// measured in runes so multi-byte text never splits mid-character. The window
// start advances by size-overlap per chunk, so each chunk shares its first
// overlap runes with the tail of the previous one; the final chunk may be
// shorter than size.
//
// size must be positive and overlap must be in [0, size): with overlap >= size
// the offset would never advance and the loop would not terminate, so those
// parameters are rejected up front.
//
// An empty document yields zero chunks, not an error.
func Split(document string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", service.ErrInvalidParameter, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", service.ErrInvalidParameter, size, overlap)
	}

	if document == "" {
		return []string{}, nil
	}

	runes := []rune(document)
	step := size - overlap

	chunks := make([]string, 0, (len(runes)+step-1)/step)
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}

	return chunks, nil
}
