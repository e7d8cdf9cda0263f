package vector

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/s3vectors/document"
	s3vectypes "github.com/aws/aws-sdk-go-v2/service/s3vectors/types"

	"github.com/despme/despme/internal/domain"
)

// metadataDocument converts string metadata to the smithy document shape
// S3 Vectors expects for filterable fields.
func metadataDocument(metadata map[string]string) document.Interface {
	if len(metadata) == 0 {
		return nil
	}
	return document.NewLazyDocument(metadata)
}

// outputToResult converts one query hit into a domain result.
// Metadata values are stored as JSON, so non-string values are
// stringified rather than dropped.
func outputToResult(v s3vectypes.QueryOutputVector) domain.SearchResult {
	res := domain.SearchResult{}
	if v.Key != nil {
		res.ID = *v.Key
	}
	if v.Distance != nil {
		res.Distance = float64(*v.Distance)
	}

	if v.Metadata != nil {
		var raw map[string]any
		if err := v.Metadata.UnmarshalSmithyDocument(&raw); err == nil {
			res.Metadata = stringifyMetadata(raw)
			res.Text = res.Metadata["text"]
		}
	}
	return res
}

func stringifyMetadata(raw map[string]any) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
