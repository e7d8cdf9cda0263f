// Package docfile loads document batches from JSON files.
package docfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/despme/despme/internal/domain"
)

// Load reads a JSON array of documents from path. A malformed or empty
// file fails as a whole; individual documents are not validated here,
// so a bad document surfaces as a per-document failure during
// submission instead of blocking its siblings.
func Load(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%s: no documents found", path)
	}
	return docs, nil
}
