package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/despme/despme/internal/domain"
	healthuc "github.com/despme/despme/internal/usecase/health"
	ingestuc "github.com/despme/despme/internal/usecase/ingest"
	searchuc "github.com/despme/despme/internal/usecase/search"
)

type stubEmbedder struct {
	vec []float32
	err error
}

func (s *stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.vec}, nil
}

type stubWriter struct {
	err error
}

func (s *stubWriter) Put(context.Context, string, []float32, map[string]string) error {
	return s.err
}

type stubQuerier struct {
	results []domain.SearchResult
	err     error
	gotK    int
}

func (s *stubQuerier) Query(_ context.Context, _ []float32, topK int) ([]domain.SearchResult, error) {
	s.gotK = topK
	return s.results, s.err
}

func newTestRouter(embed *stubEmbedder, writer *stubWriter, querier *stubQuerier) http.Handler {
	log := zap.NewNop()
	srv := NewServer(
		ingestuc.New(embed, writer, log),
		searchuc.New(embed, querier, log),
		healthuc.New(nil, nil),
		log,
	)
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestIngestEndpoint_Success(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/ingest", `{"text":"hello","metadata":{"category":"quote"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}

	var resp IngestResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DocumentID == "" {
		t.Error("expected a document_id")
	}
	if resp.Message == "" {
		t.Error("expected a confirmation message")
	}
}

func TestIngestEndpoint_MissingText_400(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/ingest", `{"metadata":{"a":"b"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Code != CodeValidationFailed {
		t.Errorf("code: got %s, want %s", errResp.Code, CodeValidationFailed)
	}
}

func TestIngestEndpoint_InvalidJSON_400(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/ingest", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
}

func TestIngestEndpoint_EmbedderDown_502(t *testing.T) {
	embed := &stubEmbedder{err: domain.ErrEmbeddingProviderError}
	h := newTestRouter(embed, &stubWriter{}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/ingest", `{"text":"hello"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status: got %d, want 502", rr.Code)
	}
}

func TestIngestEndpoint_IndexMissing_404(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{err: domain.ErrIndexNotFound}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/ingest", `{"text":"hello"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
}

func TestIngestEndpoint_AccessDenied_403(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{err: domain.ErrAccessDenied}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/ingest", `{"text":"hello"}`)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want 403", rr.Code)
	}
}

func TestIngestEndpoint_UnknownError_500(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{err: errors.New("boom")}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/ingest", `{"text":"hello"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "boom") {
		t.Error("internal error details leaked to client")
	}
}

func TestSearchEndpoint_Success(t *testing.T) {
	querier := &stubQuerier{results: []domain.SearchResult{
		{ID: "a", Distance: 0.2, Text: "first", Metadata: map[string]string{"movie": "Despicable Me"}},
		{ID: "b", Distance: 0.7, Text: "second"},
	}}
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, querier)

	rr := doJSON(t, h, "POST", "/search", `{"query":"minions","k":2}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rr.Code, rr.Body.String())
	}

	var resp SearchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Fatalf("unexpected count: %+v", resp)
	}
	if resp.Results[0].ID != "a" {
		t.Errorf("result order not preserved: %+v", resp.Results)
	}
}

func TestSearchEndpoint_NoResults_EmptyArray(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/search", `{"query":"nothing here"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"results":[]`) {
		t.Errorf("expected empty results array, got %s", rr.Body.String())
	}
}

func TestSearchEndpoint_EmptyQuery_400(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, &stubQuerier{})

	rr := doJSON(t, h, "POST", "/search", `{"query":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rr.Code)
	}
}

func TestSearchEndpoint_IndexMissing_404(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, &stubQuerier{err: domain.ErrIndexNotFound})

	rr := doJSON(t, h, "POST", "/search", `{"query":"minions"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
}

// Clients occasionally send k as a string or garbage; the handler
// coerces what it can and falls back to the default instead of
// rejecting the request.
func TestSearchEndpoint_LaxK(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		wantK int
	}{
		{"number", `{"query":"minions","k":2}`, 2},
		{"numeric string", `{"query":"minions","k":"3"}`, 3},
		{"padded string", `{"query":"minions","k":" 4 "}`, 4},
		{"garbage string", `{"query":"minions","k":"lots"}`, searchuc.DefaultTopK},
		{"boolean", `{"query":"minions","k":true}`, searchuc.DefaultTopK},
		{"absent", `{"query":"minions"}`, searchuc.DefaultTopK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			querier := &stubQuerier{}
			h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, querier)

			rr := doJSON(t, h, "POST", "/search", tc.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200 (body %s)", rr.Code, rr.Body.String())
			}
			if querier.gotK != tc.wantK {
				t.Errorf("top_k: got %d, want %d", querier.gotK, tc.wantK)
			}
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newTestRouter(&stubEmbedder{vec: []float32{0.1}}, &stubWriter{}, &stubQuerier{})

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "healthy") {
		t.Errorf("unexpected body: %s", rr.Body.String())
	}
}
