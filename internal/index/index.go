// Package index provides the in-memory embedding index used for
// similarity search over knowledge-base chunks.
package index

import (
	"math"
	"sort"
	"sync"

	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// Index holds embedded chunks and answers nearest-neighbor queries by
// cosine similarity. The chunk slice is replaced wholesale via Swap, so
// readers never observe a partially built index.
type Index struct {
	mu        sync.RWMutex
	chunks    []domain.Chunk
	dimension int
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Swap replaces the indexed chunks with a new set. All chunks must carry
// an embedding of the same dimension; chunks with a mismatched vector
// make the whole swap fail and leave the prior index in effect.
func (ix *Index) Swap(chunks []domain.Chunk) error {
	dim := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return port.ErrEmbeddingProvider
		}
		if dim == 0 {
			dim = len(c.Embedding)
		} else if len(c.Embedding) != dim {
			return port.ErrDimensionMismatch
		}
	}

	fresh := make([]domain.Chunk, len(chunks))
	copy(fresh, chunks)

	ix.mu.Lock()
	ix.chunks = fresh
	ix.dimension = dim
	ix.mu.Unlock()
	return nil
}

// Query returns up to k chunks ranked by cosine similarity to the query
// vector, highest score first. Equal scores break by ascending source
// offset, so results are deterministic.
func (ix *Index) Query(vector []float32, k int) ([]domain.RetrievalResult, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.chunks) == 0 {
		return nil, nil
	}
	if len(vector) != ix.dimension {
		return nil, port.ErrDimensionMismatch
	}

	results := make([]domain.RetrievalResult, 0, len(ix.chunks))
	for _, c := range ix.chunks {
		results = append(results, domain.RetrievalResult{
			Chunk: c,
			Score: CosineSimilarity(vector, c.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.SourceOffset < results[j].Chunk.SourceOffset
	})

	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Dimension returns the embedding dimension of the current index, or 0
// when the index is empty.
func (ix *Index) Dimension() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1; zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
