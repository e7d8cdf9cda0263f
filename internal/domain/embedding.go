package domain

import "context"

// EmbeddingResult is a vector produced by an embedding provider,
// along with token usage when the provider reports it.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder turns text into an embedding vector via an external model.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}
