// Command despme-search queries the index and prints ranked results,
// either through the despme HTTP API or directly against SageMaker and
// S3 Vectors. Run with -i for an interactive console.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3vectors"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/despme/despme/internal/config"
	logpkg "github.com/despme/despme/internal/logger"
	vectorrepo "github.com/despme/despme/internal/repository/vector"
	sagemakerEmb "github.com/despme/despme/internal/transport/sagemaker"
	"github.com/despme/despme/internal/tui"
	searchuc "github.com/despme/despme/internal/usecase/search"
	despme "github.com/despme/despme/pkg/sdk"
)

const snippetLimit = 150

func main() {
	var (
		k           = flag.Int("k", 3, "number of results to display")
		mode        = flag.String("mode", "direct", `query mode: "direct" (AWS SDK) or "api" (despme HTTP API)`)
		interactive = flag.Bool("i", false, "interactive search console")
	)
	flag.Parse()

	// .env is optional; real environment always wins.
	_ = godotenv.Load()

	env := config.LoadEnv()

	var searcher tui.SearchPort
	var err error
	switch *mode {
	case "direct":
		searcher, err = directSearcher(env)
	case "api":
		searcher, err = apiSearcher(env)
	default:
		err = fmt.Errorf("unknown mode %q (want direct or api)", *mode)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *interactive {
		model := tui.New(searcher, *k)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: despme-search [-k N] [-mode direct|api] <query>")
		os.Exit(2)
	}

	results, err := searcher.Search(context.Background(), query, *k)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return
	}
	for i, r := range results {
		fmt.Println(renderResult(i+1, r))
	}
}

// directSearcher queries SageMaker and S3 Vectors through the AWS SDK,
// without going through the HTTP API.
func directSearcher(env config.Env) (tui.SearchPort, error) {
	if err := env.ValidateDirect(); err != nil {
		return nil, err
	}

	logger, err := logpkg.New(config.GetEnv(), "")
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	var awsOpts []func(*awsconfig.LoadOptions) error
	if env.Region != "" {
		awsOpts = append(awsOpts, awsconfig.WithRegion(env.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}

	embedder := sagemakerEmb.NewEmbedder(&sagemakerEmb.Config{
		Client:   sagemakerruntime.NewFromConfig(awsCfg),
		Endpoint: env.SageMakerEndpoint,
		Logger:   logger,
	})
	repo := vectorrepo.New(s3vectors.NewFromConfig(awsCfg), env.VectorBucket, env.IndexName, logger)

	return &directAdapter{svc: searchuc.New(embedder, repo, logger)}, nil
}

// apiSearcher queries through the deployed despme HTTP API.
func apiSearcher(env config.Env) (tui.SearchPort, error) {
	if err := env.ValidateAPI(); err != nil {
		return nil, err
	}
	client, err := despme.New(env.APIEndpoint, despme.WithAPIKey(env.APIKey))
	if err != nil {
		return nil, err
	}
	return &searchAdapter{client: client}, nil
}

var (
	rankStyle    = lipgloss.NewStyle().Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	metaKeyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	textStyle    = lipgloss.NewStyle().PaddingLeft(3)
)

func renderResult(rank int, r tui.Result) string {
	var b strings.Builder

	b.WriteString(rankStyle.Render(fmt.Sprintf("%d.", rank)))
	b.WriteString(" ")
	b.WriteString(scoreStyle.Render(fmt.Sprintf("similarity %.1f%%", (1-r.Score)*100)))
	b.WriteString("\n")

	for _, key := range []string{"title", "character", "movie", "category"} {
		if v := r.Metadata[key]; v != "" {
			b.WriteString(textStyle.Render(metaKeyStyle.Render(key+": ") + v))
			b.WriteString("\n")
		}
	}

	b.WriteString(textStyle.Render(snippet(r.Text)))
	b.WriteString("\n")
	return b.String()
}

// snippet truncates the text to a display-friendly length on a rune
// boundary.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "..."
}

// directAdapter bridges the search use case to the TUI port.
type directAdapter struct {
	svc *searchuc.Service
}

func (a *directAdapter) Search(ctx context.Context, query string, k int) ([]tui.Result, error) {
	results, err := a.svc.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]tui.Result, len(results))
	for i, r := range results {
		out[i] = tui.Result{
			ID:       r.ID,
			Score:    r.Distance,
			Text:     r.Text,
			Metadata: r.Metadata,
		}
	}
	return out, nil
}

// searchAdapter bridges the SDK client to the TUI port.
type searchAdapter struct {
	client *despme.Client
}

func (a *searchAdapter) Search(ctx context.Context, query string, k int) ([]tui.Result, error) {
	results, err := a.client.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]tui.Result, len(results))
	for i, r := range results {
		out[i] = tui.Result{
			ID:       r.ID,
			Score:    r.Score,
			Text:     r.Text,
			Metadata: r.Metadata,
		}
	}
	return out, nil
}
