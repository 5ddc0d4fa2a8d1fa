// Package embedder wraps the external sentence-embedding model behind a
// stable batch-encode contract. Vectors returned by any implementation
// are L2-normalized, so dot product equals cosine similarity.
package embedder

import (
	"context"
	"errors"
)

// ErrNoInput is returned when an encode call receives no texts.
var ErrNoInput = errors.New("no texts provided for embedding")

// Embedder generates normalized vector embeddings for text
type Embedder interface {
	// Encode creates one embedding per input text, positionally aligned
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	// EncodeOne creates an embedding for a single text
	EncodeOne(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the embedding dimensionality of the model
	Dimensions() int
	// Model returns the identifying name of the underlying model
	Model() string
}
