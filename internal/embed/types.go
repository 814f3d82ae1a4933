// Package embed provides embedding generation for query and chunk text.
// The default provider is an HTTP embedding service; a deterministic
// hash-based embedder is available for offline use and tests.
package embed

import "context"

// Embedder generates embedding vectors for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result has one vector per input, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding dimension, or 0 if unknown
	// before the first call.
	Dimensions() int

	// Close releases resources.
	Close() error
}
