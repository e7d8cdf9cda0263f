// Package sagemaker implements domain.Embedder over a SageMaker
// real-time inference endpoint hosting a HuggingFace embedding model.
package sagemaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/despme/despme/internal/domain"
	"github.com/despme/despme/internal/metrics"
)

const providerName = "sagemaker"

// InvokeAPI is the subset of the SageMaker runtime client used by the embedder.
type InvokeAPI interface {
	InvokeEndpoint(
		ctx context.Context,
		params *sagemakerruntime.InvokeEndpointInput,
		optFns ...func(*sagemakerruntime.Options),
	) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// Embedder calls a SageMaker endpoint with {"inputs": text} and unwraps
// the HuggingFace nested-array response into a flat vector.
type Embedder struct {
	client   InvokeAPI
	endpoint string
	logger   *zap.Logger
}

// Config holds the embedding endpoint settings.
type Config struct {
	Client   InvokeAPI
	Endpoint string
	Logger   *zap.Logger
}

// NewEmbedder creates a SageMaker embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		client:   cfg.Client,
		endpoint: cfg.Endpoint,
		logger:   cfg.Logger,
	}
}

// Embed implements domain.Embedder. Transient endpoint errors are retried
// with exponential backoff (3 attempts, 1s initial delay, doubling).
// SageMaker reports no token usage, so the result carries only the vector.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("marshal inference payload: %w", err)
	}

	start := time.Now()

	var body []byte
	invoke := func() error {
		out, invokeErr := e.client.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
			EndpointName: aws.String(e.endpoint),
			ContentType:  aws.String("application/json"),
			Body:         payload,
		})
		if invokeErr != nil {
			var apiErr smithy.APIError
			if errors.As(invokeErr, &apiErr) {
				e.logger.Warn("SageMaker invoke failed, may retry",
					zap.String("endpoint", e.endpoint),
					zap.String("code", apiErr.ErrorCode()),
					zap.Error(invokeErr),
				)
				return invokeErr
			}
			return backoff.Permanent(invokeErr)
		}
		body = out.Body
		return nil
	}

	err = backoff.Retry(invoke, backoff.WithContext(newBackOff(), ctx))

	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.endpoint, "api_error").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("invoke endpoint %s: %v: %w",
			e.endpoint, err, domain.ErrEmbeddingProviderError)
	}

	vec, err := parseEmbedding(body)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(providerName, e.endpoint, "bad_response").Inc()
		return domain.EmbeddingResult{}, err
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(providerName, e.endpoint, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(providerName, e.endpoint).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vec}, nil
}

// newBackOff builds the retry policy: 3 attempts total, 1s initial delay, doubling.
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	return backoff.WithMaxRetries(b, 2)
}

// parseEmbedding unwraps the model output. HuggingFace containers return
// the vector nested as [[[v]]], [[v]] or [v] depending on pooling config;
// the first element is taken at each level.
func parseEmbedding(body []byte) ([]float32, error) {
	raw := json.RawMessage(body)
	for depth := 0; depth < 3; depth++ {
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err == nil {
			if len(vec) == 0 {
				return nil, fmt.Errorf("%w: empty vector", domain.ErrInvalidEmbedding)
			}
			return vec, nil
		}

		var nested []json.RawMessage
		if err := json.Unmarshal(raw, &nested); err != nil || len(nested) == 0 {
			break
		}
		raw = nested[0]
	}
	return nil, fmt.Errorf("%w: unrecognized response shape", domain.ErrInvalidEmbedding)
}
