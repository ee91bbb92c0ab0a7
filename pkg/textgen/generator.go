// Package textgen defines the text-generation collaborator used for query
// translation, evidence grading, and answer synthesis. A generator is an
// opaque prompt-in, text-out function with a bounded latency and failure
// profile; all retry policy lives with the caller.
package textgen

import "context"

// Generator produces a text completion for a prompt.
type Generator interface {
	// Generate returns the model's text response for the given prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}
