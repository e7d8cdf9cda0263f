package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/despme/despme/internal/domain"
)

const (
	// DefaultTopK is used when callers pass k <= 0.
	DefaultTopK = 5
	// MaxTopK caps how many results a single query may request.
	MaxTopK = 50
)

// Service embeds a query and returns the nearest stored documents.
type Service struct {
	embed Embedder
	store VectorQuerier
	log   *zap.Logger
}

func New(embed Embedder, store VectorQuerier, log *zap.Logger) *Service {
	return &Service{embed: embed, store: store, log: log}
}

// Search returns up to k results ordered by ascending distance, as
// returned by the index. k is clamped to [1, MaxTopK]; zero or negative
// values fall back to DefaultTopK.
func (s *Service) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	if query == "" {
		return nil, domain.ErrMissingText
	}
	k = clampTopK(k)

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(emb.Embedding) == 0 {
		return nil, domain.ErrInvalidEmbedding
	}

	results, err := s.store.Query(ctx, emb.Embedding, k)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	s.log.Debug("search completed",
		zap.Int("top_k", k),
		zap.Int("results", len(results)),
	)
	return results, nil
}

func clampTopK(k int) int {
	switch {
	case k <= 0:
		return DefaultTopK
	case k > MaxTopK:
		return MaxTopK
	default:
		return k
	}
}
