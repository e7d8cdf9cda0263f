package domain

import "errors"

var (
	// ErrMissingText signals a document or query without text.
	ErrMissingText = errors.New("missing required field")
	// ErrInvalidEmbedding signals an empty or malformed vector from the model.
	ErrInvalidEmbedding = errors.New("invalid embedding returned by provider")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexNotFound signals a missing vector index or bucket.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrAccessDenied signals missing permissions on the vector store.
	ErrAccessDenied = errors.New("vector store access denied")
)
