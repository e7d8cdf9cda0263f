package domain

// SearchResult is a single ranked hit returned by the vector index.
// Distance is the raw metric reported by the index; results arrive
// ordered by it and are never re-sorted client-side.
type SearchResult struct {
	ID       string            `json:"id"`
	Distance float64           `json:"score"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Similarity converts the index distance into a display score.
func (r *SearchResult) Similarity() float64 {
	return 1 - r.Distance
}
