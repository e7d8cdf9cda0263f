package despme

// Document is a text payload with optional caller metadata.
type Document struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IngestResult confirms a stored document.
type IngestResult struct {
	Message    string `json:"message"`
	DocumentID string `json:"document_id"`
}

// SearchResult is one ranked match. Score is the index distance;
// smaller means closer.
type SearchResult struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Similarity converts the distance score to a similarity in [0, 1]
// for cosine-distance indexes.
func (r *SearchResult) Similarity() float64 {
	return 1 - r.Score
}

// HealthReport is the health endpoint payload.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}
