package despme

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is() to check; they are attached to the
// *APIError returned for the matching server error code.
var (
	ErrUnauthorized           = errors.New("despme: invalid or missing api key")
	ErrIndexNotFound          = errors.New("despme: vector index not found")
	ErrAccessDenied           = errors.New("despme: access denied")
	ErrEmbeddingProviderError = errors.New("despme: embedding provider error")
	ErrValidation             = errors.New("despme: validation failed")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	sentinel   error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("despme: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("despme: api error %d (%s)", e.StatusCode, e.Code)
}

func (e *APIError) Unwrap() error { return e.sentinel }

// sentinelForCode maps server error codes to sentinel errors.
func sentinelForCode(code string) error {
	switch code {
	case "unauthorized":
		return ErrUnauthorized
	case "index_not_found":
		return ErrIndexNotFound
	case "access_denied":
		return ErrAccessDenied
	case "embedding_provider_error":
		return ErrEmbeddingProviderError
	case "validation_failed", "bad_request":
		return ErrValidation
	default:
		return nil
	}
}
