package ingest

import (
	"context"

	"go.uber.org/zap"

	"github.com/despme/despme/internal/domain"
)

// Result is the outcome of one document in a batch run.
type Result struct {
	Index int
	ID    string
	Err   error
}

// OK reports whether the document was ingested.
func (r Result) OK() bool { return r.Err == nil }

// Summary aggregates a batch run.
type Summary struct {
	Succeeded int
	Failed    int
}

// Batch ingests documents strictly one at a time, in input order, blocking
// on each round trip. A failing document is reported and skipped; the
// remaining documents are still submitted. There is no rollback.
func (s *Service) Batch(ctx context.Context, docs []domain.Document) ([]Result, Summary) {
	results := make([]Result, len(docs))
	var summary Summary

	for i := range docs {
		id, err := s.Ingest(ctx, &docs[i])
		results[i] = Result{Index: i, ID: id, Err: err}

		if err != nil {
			summary.Failed++
			s.logger.Error("failed to ingest document",
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		summary.Succeeded++
	}

	return results, summary
}
