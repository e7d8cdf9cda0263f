package ingest

import (
	"context"

	"github.com/despme/despme/internal/domain"
)

// Embedder vectorizes document text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorWriter stores one vector with attached metadata.
type VectorWriter interface {
	Put(ctx context.Context, id string, embedding []float32, metadata map[string]string) error
}
