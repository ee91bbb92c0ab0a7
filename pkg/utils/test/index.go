package testutils

import (
	"context"
	"fmt"

	"github.com/wayfarerhq/wayfarer/pkg/index"
	"github.com/wayfarerhq/wayfarer/pkg/sparse"
)

// MockIndex is a test document index returning scripted ranked lists.
type MockIndex struct {
	DenseHits  []index.Hit
	SparseHits []index.Hit

	// FailQuery causes HybridQuery to return an error.
	FailQuery bool

	// Queries counts HybridQuery invocations; LastK records the most
	// recent K.
	Queries int
	LastK   int

	Upserted []index.Chunk
}

func NewMockIndex() *MockIndex {
	return &MockIndex{}
}

func (m *MockIndex) EnsureCollection(_ context.Context) error {
	return nil
}

func (m *MockIndex) Upsert(_ context.Context, chunks []index.Chunk) error {
	m.Upserted = append(m.Upserted, chunks...)
	return nil
}

func (m *MockIndex) HybridQuery(_ context.Context, _ []float32, _ []sparse.Term, k int) ([]index.Hit, []index.Hit, error) {
	m.Queries++
	m.LastK = k

	if m.FailQuery {
		return nil, nil, fmt.Errorf("mock index failure")
	}

	return clamp(m.DenseHits, k), clamp(m.SparseHits, k), nil
}

func (m *MockIndex) Close() error {
	return nil
}

func clamp(hits []index.Hit, k int) []index.Hit {
	if k > 0 && len(hits) > k {
		return hits[:k]
	}
	return hits
}
