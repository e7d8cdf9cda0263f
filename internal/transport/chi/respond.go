package chi

import (
	"encoding/json"
	"net/http"
)

// Error codes returned in the JSON error envelope.
const (
	CodeBadRequest             = "bad_request"
	CodeValidationFailed       = "validation_failed"
	CodeUnauthorized           = "unauthorized"
	CodeIndexNotFound          = "index_not_found"
	CodeAccessDenied           = "access_denied"
	CodeEmbeddingProviderError = "embedding_provider_error"
	CodeInternalError          = "internal_error"
)

// ErrorResponse is the envelope for all error payloads.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
