// Package index provides interfaces and implementations for the searchable
// document store holding the immigration corpus. The engine only queries
// this index; ingestion (pkg/ingest) builds it.
package index

import (
	"context"

	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

// Passage is one stored corpus chunk.
type Passage struct {
	// ID is a unique identifier for the passage (url#section by convention).
	ID string

	// Text is the chunk content, corpus language.
	Text string

	// SourceURL is the page the passage was extracted from.
	SourceURL string

	// Title and Section locate the passage within its source document.
	Title   string
	Section string
}

// Hit is a retrieved passage with its ranker score. Scores from different
// rankers live on incomparable scales; only the rank order is meaningful
// across rankers.
type Hit struct {
	Passage

	Score float32
}

// Chunk is a passage plus its dense and sparse representations, ready for
// upsert.
type Chunk struct {
	Passage

	Dense  []float32
	Sparse []sparse.Term
}

// Driver handles storage and hybrid retrieval of corpus passages.
type Driver interface {
	// EnsureCollection creates the backing collection if it does not exist.
	EnsureCollection(ctx context.Context) error

	// Upsert stores chunks, replacing any existing chunk with the same ID.
	Upsert(ctx context.Context, chunks []Chunk) error

	// HybridQuery issues two independent top-K retrievals, one by
	// dense-vector similarity and one by sparse-term overlap, and returns
	// both ranked lists. Fusion is the caller's job.
	HybridQuery(ctx context.Context, dense []float32, terms []sparse.Term, k int) (denseHits, sparseHits []Hit, err error)

	// Close releases any resources held by the driver.
	Close() error
}
