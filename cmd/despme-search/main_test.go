package main

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/despme/despme/internal/domain"
	"github.com/despme/despme/internal/tui"
	searchuc "github.com/despme/despme/internal/usecase/search"
)

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type stubQuerier struct {
	gotK    int
	results []domain.SearchResult
}

func (q *stubQuerier) Query(_ context.Context, _ []float32, topK int) ([]domain.SearchResult, error) {
	q.gotK = topK
	return q.results, nil
}

// The direct adapter runs queries through the search use case without
// any HTTP hop and keeps the ranked order.
func TestDirectAdapter_Search(t *testing.T) {
	querier := &stubQuerier{results: []domain.SearchResult{
		{ID: "a", Distance: 0.1, Text: "freeze ray", Metadata: map[string]string{"character": "Gru"}},
		{ID: "b", Distance: 0.4, Text: "bananas"},
	}}
	adapter := &directAdapter{svc: searchuc.New(stubEmbedder{}, querier, zap.NewNop())}

	results, err := adapter.Search(context.Background(), "freeze ray", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if querier.gotK != 3 {
		t.Errorf("expected top_k 3, got %d", querier.gotK)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("ranked order lost: %+v", results)
	}
	if results[0].Score != 0.1 {
		t.Errorf("expected score 0.1, got %f", results[0].Score)
	}
	if results[0].Metadata["character"] != "Gru" {
		t.Errorf("metadata lost: %+v", results[0])
	}
}

func TestRenderResult(t *testing.T) {
	out := renderResult(1, tui.Result{
		ID:       "a",
		Score:    0.1,
		Text:     "It's so fluffy!",
		Metadata: map[string]string{"character": "Agnes", "movie": "Despicable Me"},
	})

	for _, want := range []string{"1.", "similarity 90.0%", "character: ", "Agnes", "It's so fluffy!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSnippet_TruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("б", snippetLimit+10)
	got := snippet(long)
	if got != strings.Repeat("б", snippetLimit)+"..." {
		t.Errorf("unexpected snippet: %q", got)
	}
	if short := snippet("short"); short != "short" {
		t.Errorf("short text changed: %q", short)
	}
}
