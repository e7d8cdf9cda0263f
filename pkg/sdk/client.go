package despme

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "despme-go"
	apiKeyHeader     = "x-api-key"
)

// Client talks to the despme API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
	obs        *observer
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if baseURL == "" {
		return nil, errors.New("despme: base URL required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("despme: invalid base URL %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.apiKey,
		userAgent:  cfg.userAgent,
		httpClient: hc,
		obs:        obs,
	}, nil
}

// Ingest embeds and stores a single document, returning its assigned id.
func (c *Client) Ingest(ctx context.Context, text string, metadata map[string]string) (res IngestResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ingest", start, err) }()

	err = c.post(ctx, "/ingest", Document{Text: text, Metadata: metadata}, &res)
	return res, err
}

// Search returns up to k documents nearest to the query, best first.
// Pass k <= 0 to use the server default.
func (c *Client) Search(ctx context.Context, query string, k int) (results []SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var resp searchResponse
	if err = c.post(ctx, "/search", searchRequest{Query: query, K: k}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Health fetches the service health report.
func (c *Client) Health(ctx context.Context) (report HealthReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	err = c.get(ctx, "/health", &report)
	return report, err
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("despme: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("despme: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("despme: build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("despme: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("despme: decode response: %w", err)
		}
	}
	return nil
}

func apiErrorFromResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil {
		var envelope struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Code != "" {
			apiErr.Code = envelope.Code
			apiErr.Message = envelope.Message
		}
	}

	apiErr.sentinel = sentinelForCode(apiErr.Code)
	if apiErr.sentinel == nil {
		// Fall back on status for gateways that strip the body.
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			apiErr.sentinel = ErrUnauthorized
		case http.StatusForbidden:
			apiErr.sentinel = ErrAccessDenied
		case http.StatusNotFound:
			apiErr.sentinel = ErrIndexNotFound
		case http.StatusBadGateway:
			apiErr.sentinel = ErrEmbeddingProviderError
		}
	}
	return apiErr
}
