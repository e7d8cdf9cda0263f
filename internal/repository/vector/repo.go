// Package vector is the S3 Vectors repository: one write and one query
// operation against a managed vector index. Indexing and similarity
// search themselves happen service-side.
package vector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	s3vectypes "github.com/aws/aws-sdk-go-v2/service/s3vectors/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/despme/despme/internal/domain"
	"github.com/despme/despme/internal/metrics"
)

// API is the subset of the S3 Vectors client used by the repository.
type API interface {
	PutVectors(
		ctx context.Context,
		params *s3vectors.PutVectorsInput,
		optFns ...func(*s3vectors.Options),
	) (*s3vectors.PutVectorsOutput, error)
	QueryVectors(
		ctx context.Context,
		params *s3vectors.QueryVectorsInput,
		optFns ...func(*s3vectors.Options),
	) (*s3vectors.QueryVectorsOutput, error)
	GetIndex(
		ctx context.Context,
		params *s3vectors.GetIndexInput,
		optFns ...func(*s3vectors.Options),
	) (*s3vectors.GetIndexOutput, error)
}

// Repository reads and writes a single S3 Vectors index.
type Repository struct {
	client API
	bucket string
	index  string
	logger *zap.Logger
}

// New creates an S3 Vectors repository bound to one bucket and index.
func New(client API, bucket, index string, logger *zap.Logger) *Repository {
	return &Repository{client: client, bucket: bucket, index: index, logger: logger}
}

// Put stores one vector under the given key with attached metadata.
// Transient service errors are retried; a missing index or denied access
// is reported immediately as a mapped domain error.
func (r *Repository) Put(ctx context.Context, id string, embedding []float32, metadata map[string]string) error {
	start := time.Now()

	put := func() error {
		_, err := r.client.PutVectors(ctx, &s3vectors.PutVectorsInput{
			VectorBucketName: aws.String(r.bucket),
			IndexName:        aws.String(r.index),
			Vectors: []s3vectypes.PutInputVector{{
				Key:      aws.String(id),
				Data:     &s3vectypes.VectorDataMemberFloat32{Value: embedding},
				Metadata: metadataDocument(metadata),
			}},
		})
		return r.classify(err, "put")
	}

	err := backoff.Retry(put, backoff.WithContext(newBackOff(), ctx))

	if err != nil {
		metrics.VectorStoreRequestsTotal.WithLabelValues("put", "error").Inc()
		return err
	}

	metrics.VectorStoreRequestsTotal.WithLabelValues("put", "success").Inc()
	metrics.VectorStoreRequestDuration.WithLabelValues("put").Observe(time.Since(start).Seconds())
	return nil
}

// Query runs a top-k similarity query and returns hits in index order,
// with distance and metadata attached.
func (r *Repository) Query(ctx context.Context, embedding []float32, k int) ([]domain.SearchResult, error) {
	start := time.Now()

	var out *s3vectors.QueryVectorsOutput
	query := func() error {
		resp, err := r.client.QueryVectors(ctx, &s3vectors.QueryVectorsInput{
			VectorBucketName: aws.String(r.bucket),
			IndexName:        aws.String(r.index),
			QueryVector:      &s3vectypes.VectorDataMemberFloat32{Value: embedding},
			TopK:             aws.Int32(int32(k)),
			ReturnDistance:   true,
			ReturnMetadata:   true,
		})
		if err != nil {
			return r.classify(err, "query")
		}
		out = resp
		return nil
	}

	err := backoff.Retry(query, backoff.WithContext(newBackOff(), ctx))

	if err != nil {
		metrics.VectorStoreRequestsTotal.WithLabelValues("query", "error").Inc()
		return nil, err
	}

	metrics.VectorStoreRequestsTotal.WithLabelValues("query", "success").Inc()
	metrics.VectorStoreRequestDuration.WithLabelValues("query").Observe(time.Since(start).Seconds())

	results := make([]domain.SearchResult, 0, len(out.Vectors))
	for _, v := range out.Vectors {
		results = append(results, outputToResult(v))
	}
	return results, nil
}

// classify maps service errors to domain errors and marks non-retryable
// ones permanent. A missing index means the infrastructure was never
// provisioned; retrying cannot fix that.
func (r *Repository) classify(err error, op string) error {
	if err == nil {
		return nil
	}

	var notFound *s3vectypes.NotFoundException
	if errors.As(err, &notFound) {
		return backoff.Permanent(fmt.Errorf(
			"index %q not found in bucket %q: %w", r.index, r.bucket, domain.ErrIndexNotFound))
	}

	var denied *s3vectypes.AccessDeniedException
	if errors.As(err, &denied) {
		return backoff.Permanent(fmt.Errorf(
			"ensure the caller has s3vectors permissions: %w", domain.ErrAccessDenied))
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if apiErr.ErrorCode() == "AccessDenied" {
			return backoff.Permanent(fmt.Errorf(
				"ensure the caller has s3vectors permissions: %w", domain.ErrAccessDenied))
		}
		r.logger.Warn("S3 Vectors call failed, may retry",
			zap.String("operation", op),
			zap.String("code", apiErr.ErrorCode()),
			zap.Error(err),
		)
		return fmt.Errorf("%s vectors: %w", op, err)
	}

	return backoff.Permanent(fmt.Errorf("%s vectors: %w", op, err))
}

// Ping checks that the index exists and is reachable. Uses the cheap
// GetIndex metadata call, not a query.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.client.GetIndex(ctx, &s3vectors.GetIndexInput{
		VectorBucketName: aws.String(r.bucket),
		IndexName:        aws.String(r.index),
	})
	if err != nil {
		return fmt.Errorf("get index %q: %w", r.index, err)
	}
	return nil
}

// newBackOff builds the retry policy: 3 attempts total, 1s initial delay, doubling.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return backoff.WithMaxRetries(b, 2)
}
