package search

import (
	"context"

	"github.com/despme/despme/internal/domain"
)

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorQuerier runs a nearest-neighbour query against the vector index.
type VectorQuerier interface {
	Query(ctx context.Context, embedding []float32, topK int) ([]domain.SearchResult, error)
}
