// Package ingest turns documents into stored vectors: validate, embed,
// attach metadata, write. One network round trip per stage, nothing kept
// client-side between calls.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/despme/despme/internal/domain"
	"github.com/despme/despme/internal/metrics"
)

// Service handles document ingestion.
type Service struct {
	embed  Embedder
	store  VectorWriter
	logger *zap.Logger

	now   func() time.Time
	newID func() string
}

// New creates an ingestion service.
func New(embed Embedder, store VectorWriter, logger *zap.Logger) *Service {
	return &Service{
		embed:  embed,
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Ingest embeds one document and stores it under a fresh id.
// Stored metadata is the user metadata merged over {text, timestamp};
// user keys win on collision. No idempotency key exists, so ingesting
// the same document twice stores two vectors.
func (s *Service) Ingest(ctx context.Context, doc *domain.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		metrics.DocumentsIngestedTotal.WithLabelValues("failure").Inc()
		return "", err
	}

	embResult, err := s.embed.Embed(ctx, doc.Text)
	if err != nil {
		metrics.DocumentsIngestedTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("embed document: %w", err)
	}
	if len(embResult.Embedding) == 0 {
		metrics.DocumentsIngestedTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("embed document: %w", domain.ErrInvalidEmbedding)
	}

	id := s.newID()

	metadata := map[string]string{
		"text":      doc.Text,
		"timestamp": s.now().UTC().Format(time.RFC3339),
	}
	for k, v := range doc.Metadata {
		metadata[k] = v
	}

	if err := s.store.Put(ctx, id, embResult.Embedding, metadata); err != nil {
		metrics.DocumentsIngestedTotal.WithLabelValues("failure").Inc()
		return "", fmt.Errorf("store vector: %w", err)
	}

	metrics.DocumentsIngestedTotal.WithLabelValues("success").Inc()
	s.logger.Info("document ingested",
		zap.String("document_id", id),
		zap.Int("text_len", len(doc.Text)),
		zap.Int("dimensions", len(embResult.Embedding)),
	)
	return id, nil
}
