package index

// Chunk is a contiguous fragment of the source document paired with its
// embedding vector. Index is the chunk's zero-based ordinal position in the
// source document at chunking time; it stays stable across persistence.
type Chunk struct {
	Content   string    `json:"content"`
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

// Index is the ordered collection of chunks for one source document.
// It is immutable once built; rebuilding replaces the whole index.
type Index []Chunk

// Provenance tags persisted in the snapshot meta file. They record how the
// index was obtained, not where it currently lives.
const (
	// SourceLocalOnly marks an index built fresh from the source document.
	SourceLocalOnly = "local-only"
	// SourceUploaded marks a locally built index that has since been
	// persisted to the durable store.
	SourceUploaded = "0g-uploaded"
	// SourceStorage marks an index loaded from the durable store.
	SourceStorage = "0g-storage"
)

// Meta is the companion metadata persisted next to the index snapshot.
type Meta struct {
	RootHash string `json:"rootHash,omitempty"`
	Chunks   int    `json:"chunks"`
	Source   string `json:"source"`
}
