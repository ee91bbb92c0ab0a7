// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities for query and document
// vectors. Implementations own their own request timeouts; callers pass a
// context for cancellation.
type Embedder interface {
	// Embed converts text into a vector embedding of fixed dimensionality.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
