package openai

import (
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/despme/despme/internal/domain"
)

func TestParseAPIError_RequestError(t *testing.T) {
	err := parseAPIError(&openai.RequestError{
		HTTPStatusCode: 503,
		Body:           []byte("upstream unavailable"),
	})

	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	want := "embedding API error 503: upstream unavailable: embedding provider error"
	if err.Error() != want {
		t.Errorf("unexpected message:\ngot:  %q\nwant: %q", err.Error(), want)
	}
}

func TestParseAPIError_APIError(t *testing.T) {
	err := parseAPIError(&openai.APIError{
		HTTPStatusCode: 401,
		Message:        "invalid api key",
	})

	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestParseAPIError_Unknown(t *testing.T) {
	err := parseAPIError(errors.New("connection reset"))
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}
