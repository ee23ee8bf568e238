// Package embedding turns document text into dense vectors through a
// local ollama model.
package embedding

import "context"

type Embedder interface {
	// Embed converts a batch of texts into their vector representations.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// BatchSize is the largest batch the model should be fed at once.
	BatchSize() int
}
