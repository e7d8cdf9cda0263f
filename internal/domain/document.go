package domain

import "fmt"

// Document is a unit of ingestion: free text plus opaque metadata.
// Metadata is passed through to the vector index as attached fields;
// no schema is enforced beyond Text being present.
type Document struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Validate checks the single required field.
func (d *Document) Validate() error {
	if d.Text == "" {
		return fmt.Errorf("%w: text", ErrMissingText)
	}
	return nil
}
