// Command despme-ingest loads a JSON document file and submits every
// document for embedding and storage, one at a time. A failing document
// is reported and skipped; the run continues with the next one.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/despme/despme/internal/config"
	"github.com/despme/despme/internal/docfile"
	"github.com/despme/despme/internal/domain"
	logpkg "github.com/despme/despme/internal/logger"
	vectorrepo "github.com/despme/despme/internal/repository/vector"
	sagemakerEmb "github.com/despme/despme/internal/transport/sagemaker"
	ingestuc "github.com/despme/despme/internal/usecase/ingest"
	despme "github.com/despme/despme/pkg/sdk"
)

func main() {
	var (
		file = flag.String("file", "", "path to a JSON array of documents (required)")
		mode = flag.String("mode", "direct", `submission mode: "direct" (AWS SDK) or "api" (despme HTTP API)`)
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: despme-ingest -file docs.json [-mode direct|api]")
		os.Exit(2)
	}

	// .env is optional; real environment always wins.
	_ = godotenv.Load()

	logger, err := logpkg.New(config.GetEnv(), "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	env := config.LoadEnv()

	// Configuration problems are fatal before any document is read
	// or any network call is made.
	switch *mode {
	case "direct":
		err = env.ValidateDirect()
	case "api":
		err = env.ValidateAPI()
	default:
		err = fmt.Errorf("unknown mode %q (want direct or api)", *mode)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	docs, err := docfile.Load(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	logger.Info("Loaded documents", zap.String("file", *file), zap.Int("count", len(docs)))

	ctx := context.Background()

	var results []ingestuc.Result
	var summary ingestuc.Summary
	switch *mode {
	case "direct":
		results, summary, err = ingestDirect(ctx, env, docs, logger)
	case "api":
		results, summary, err = ingestAPI(ctx, env, docs, logger)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	for _, r := range results {
		if r.OK() {
			fmt.Printf("  [%d] stored as %s\n", r.Index, r.ID)
		} else {
			fmt.Printf("  [%d] FAILED: %v\n", r.Index, r.Err)
		}
	}
	fmt.Printf("Done: %d succeeded, %d failed\n", summary.Succeeded, summary.Failed)

	if summary.Succeeded == 0 && summary.Failed > 0 {
		os.Exit(1)
	}
}

// ingestDirect embeds and stores documents through the AWS SDK,
// without going through the HTTP API.
func ingestDirect(
	ctx context.Context,
	env config.Env,
	docs []domain.Document,
	logger *zap.Logger,
) ([]ingestuc.Result, ingestuc.Summary, error) {
	var awsOpts []func(*awsconfig.LoadOptions) error
	if env.Region != "" {
		awsOpts = append(awsOpts, awsconfig.WithRegion(env.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, ingestuc.Summary{}, fmt.Errorf("load AWS configuration: %w", err)
	}

	embedder := sagemakerEmb.NewEmbedder(&sagemakerEmb.Config{
		Client:   sagemakerruntime.NewFromConfig(awsCfg),
		Endpoint: env.SageMakerEndpoint,
		Logger:   logger,
	})
	repo := vectorrepo.New(s3vectors.NewFromConfig(awsCfg), env.VectorBucket, env.IndexName, logger)

	svc := ingestuc.New(embedder, repo, logger)
	results, summary := svc.Batch(ctx, docs)
	return results, summary, nil
}

// ingestAPI submits documents one by one through the despme HTTP API.
func ingestAPI(
	ctx context.Context,
	env config.Env,
	docs []domain.Document,
	logger *zap.Logger,
) ([]ingestuc.Result, ingestuc.Summary, error) {
	client, err := despme.New(env.APIEndpoint, despme.WithAPIKey(env.APIKey))
	if err != nil {
		return nil, ingestuc.Summary{}, err
	}

	results := make([]ingestuc.Result, 0, len(docs))
	var summary ingestuc.Summary
	for i := range docs {
		res, err := client.Ingest(ctx, docs[i].Text, docs[i].Metadata)
		if err != nil {
			logger.Error("document submission failed", zap.Int("index", i), zap.Error(err))
			results = append(results, ingestuc.Result{Index: i, Err: err})
			summary.Failed++
			continue
		}
		results = append(results, ingestuc.Result{Index: i, ID: res.DocumentID})
		summary.Succeeded++
	}
	return results, summary, nil
}
