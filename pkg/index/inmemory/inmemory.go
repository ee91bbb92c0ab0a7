// Package inmemory implements index.Driver with an in-process map: brute
// force cosine similarity for the dense ranking and term-overlap dot
// product for the sparse ranking. Used for tests and local runs without a
// Qdrant instance.
package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

// Driver implements index.Driver using in-memory maps.
type Driver struct {
	mu sync.RWMutex

	// chunks maps chunk ID to its stored representation.
	chunks map[string]index.Chunk
}

// NewDriver creates a new in-memory index driver.
func NewDriver() *Driver {
	return &Driver{
		chunks: make(map[string]index.Chunk),
	}
}

// EnsureCollection is a no-op for the in-memory driver.
func (d *Driver) EnsureCollection(_ context.Context) error {
	return nil
}

// Upsert stores chunks, replacing existing IDs.
func (d *Driver) Upsert(_ context.Context, chunks []index.Chunk) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, chunk := range chunks {
		d.chunks[chunk.ID] = chunk
	}
	return nil
}

// HybridQuery brute-forces both rankings over all stored chunks.
func (d *Driver) HybridQuery(_ context.Context, dense []float32, terms []sparse.Term, k int) ([]index.Hit, []index.Hit, error) {
	if k <= 0 {
		k = 5
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	denseHits := make([]index.Hit, 0, len(d.chunks))
	sparseHits := make([]index.Hit, 0, len(d.chunks))

	for _, chunk := range d.chunks {
		if score := cosine(dense, chunk.Dense); score > 0 {
			denseHits = append(denseHits, index.Hit{Passage: chunk.Passage, Score: score})
		}
		if score := overlap(terms, chunk.Sparse); score > 0 {
			sparseHits = append(sparseHits, index.Hit{Passage: chunk.Passage, Score: score})
		}
	}

	sortHits(denseHits)
	sortHits(sparseHits)

	return truncate(denseHits, k), truncate(sparseHits, k), nil
}

// Len reports how many chunks are stored. Test helper.
func (d *Driver) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.chunks)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

// sortHits orders by score descending, breaking ties by ID so the ranking
// is deterministic across map iteration orders.
func sortHits(hits []index.Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
}

func truncate(hits []index.Hit, k int) []index.Hit {
	if len(hits) <= k {
		return hits
	}
	return hits[:k]
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
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

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func overlap(query, doc []sparse.Term) float32 {
	if len(query) == 0 || len(doc) == 0 {
		return 0
	}

	weights := make(map[uint32]float32, len(doc))
	for _, t := range doc {
		weights[t.Index] = t.Weight
	}

	var score float32
	for _, t := range query {
		score += t.Weight * weights[t.Index]
	}
	return score
}

var _ index.Driver = (*Driver)(nil)
