package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultIndexName is used when INDEX_NAME is not set.
const DefaultIndexName = "despme-index"

// Env is the environment-variable configuration surface used by the CLI
// tools, mirroring what the server reads through its YAML file.
type Env struct {
	Region            string
	SageMakerEndpoint string
	VectorBucket      string
	IndexName         string
	APIEndpoint       string
	APIKey            string
}

// LoadEnv reads the shared environment variables without validation.
// The region falls back from AWS_REGION to DEFAULT_AWS_REGION; the
// AWS SDK resolves its own default when both are empty.
func LoadEnv() Env {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = os.Getenv("DEFAULT_AWS_REGION")
	}
	index := os.Getenv("INDEX_NAME")
	if index == "" {
		index = DefaultIndexName
	}
	return Env{
		Region:            region,
		SageMakerEndpoint: os.Getenv("SAGEMAKER_ENDPOINT"),
		VectorBucket:      os.Getenv("VECTOR_BUCKET"),
		IndexName:         index,
		APIEndpoint:       os.Getenv("DESPME_API_ENDPOINT"),
		APIKey:            os.Getenv("DESPME_API_KEY"),
	}
}

// ValidateDirect checks the variables required for direct SDK access
// to SageMaker and S3 Vectors.
func (e Env) ValidateDirect() error {
	var missing []string
	if e.SageMakerEndpoint == "" {
		missing = append(missing, "SAGEMAKER_ENDPOINT")
	}
	if e.VectorBucket == "" {
		missing = append(missing, "VECTOR_BUCKET")
	}
	return missingVarsError(missing)
}

// ValidateAPI checks the variables required for HTTP API access.
func (e Env) ValidateAPI() error {
	var missing []string
	if e.APIEndpoint == "" {
		missing = append(missing, "DESPME_API_ENDPOINT")
	}
	if e.APIKey == "" {
		missing = append(missing, "DESPME_API_KEY")
	}
	return missingVarsError(missing)
}

func missingVarsError(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required environment variables: %s (set them in your .env)",
		strings.Join(missing, ", "))
}
