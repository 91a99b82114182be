// Package warcraftlogs fetches combat statistics from the Warcraft Logs v2
// GraphQL API and normalizes them into models.ReportData.
package warcraftlogs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmynk/raidsplit/internal/auth"
	"github.com/mmynk/raidsplit/internal/metrics"
)

// ErrUpstream marks failures of the provider API, as opposed to bad input.
var ErrUpstream = errors.New("statistics provider error")

// ErrReportNotFound is returned when the API answers with a null report.
var ErrReportNotFound = errors.New("report not found")

// APIError is a non-2xx response or a GraphQL error list.
type APIError struct {
	Query   string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Query, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Query, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return auth.ErrInvalidToken
	}
	return ErrUpstream
}

// Client sends GraphQL queries with a bearer token from a TokenSource.
type Client struct {
	url        string
	httpClient *http.Client
	tokens     auth.TokenSource
	metrics    *metrics.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithMetrics records per-query counters and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

func NewClient(url string, tokens auth.TokenSource, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Query runs one GraphQL document and decodes its data into out. name labels
// errors and metrics.
func (c *Client) Query(ctx context.Context, name, query string, vars map[string]any, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.metrics == nil {
			return
		}
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		c.metrics.ProviderQueries.WithLabelValues(name, outcome).Inc()
		c.metrics.ProviderDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get API token: %w", err)
	}

	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to encode %s query: %w", name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w: %w", name, ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w: %w", name, ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Query: name, Status: resp.StatusCode, Message: snippet(raw)}
	}

	var gr graphQLResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return fmt.Errorf("failed to decode %s response: %w: %w", name, ErrUpstream, err)
	}
	if len(gr.Errors) > 0 {
		msgs := make([]string, 0, len(gr.Errors))
		for _, e := range gr.Errors {
			msgs = append(msgs, e.Message)
		}
		return &APIError{Query: name, Message: strings.Join(msgs, "; ")}
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return &APIError{Query: name, Message: "no data returned"}
	}
	if err := json.Unmarshal(gr.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w: %w", name, ErrUpstream, err)
	}
	return nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
