package index

import (
	"math"
	"sort"
)

// CosineSimilarity returns dot(a,b) / (||a|| * ||b||) in [-1, 1].
//
// If either vector has zero magnitude the quotient is mathematically
// undefined (0/0); it is defined here as 0 so that degraded-mode all-zero
// embeddings rank as "no signal" instead of propagating NaN into the sort.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Rank scores the query vector against every chunk and returns the top K by
// descending cosine similarity. Equal scores keep their original chunk order
// (stable sort) so results are deterministic across runs. topK <= 0 yields an
// empty result.
//
// The scan is brute-force O(n*d) per query. That is a deliberate choice: the
// corpus is the chunking of a single document, typically hundreds to low
// thousands of chunks, and does not justify an ANN structure.
func Rank(query []float64, idx Index, topK int) []Chunk {
	if topK <= 0 || len(idx) == 0 {
		return []Chunk{}
	}

	type scored struct {
		chunk Chunk
		score float64
	}

	scores := make([]scored, len(idx))
	for i, chunk := range idx {
		scores[i] = scored{chunk: chunk, score: CosineSimilarity(query, chunk.Embedding)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if topK > len(scores) {
		topK = len(scores)
	}

	result := make([]Chunk, topK)
	for i := 0; i < topK; i++ {
		result[i] = scores[i].chunk
	}
	return result
}
