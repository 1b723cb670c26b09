package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"auction-advisor/internal/domain"
	"auction-advisor/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
)

// Remote scores rows against an MLflow scoring server (`mlflow models serve`).
type Remote struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
}

// Compile-time interface check.
var _ Predictor = (*Remote)(nil)

// ClientOption configures Remote. Options given non-positive values leave
// the default in place.
type ClientOption func(*Remote)

// WithTimeout bounds each scoring request, including reading the body.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Remote) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithMaxRetries sets how often a 429, 5xx or transport failure is retried.
// Zero disables retries.
func WithMaxRetries(n int) ClientOption {
	return func(c *Remote) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff shapes the retry schedule: the first retry waits initial,
// each later one multiplies the wait by mult, capped at ceiling. A mult below
// 1 would shrink the wait and is ignored.
func WithBackoff(initial, ceiling time.Duration, mult float64) ClientOption {
	return func(c *Remote) {
		if initial > 0 {
			c.retryDelay = initial
		}
		if ceiling > 0 {
			c.maxDelay = ceiling
		}
		if mult >= 1 {
			c.backoffMult = mult
		}
		if c.maxDelay < c.retryDelay {
			c.maxDelay = c.retryDelay
		}
	}
}

// WithHTTPClient replaces the HTTP client, e.g. to share a transport.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Remote) {
		if client != nil {
			c.client = client
		}
	}
}

// NewRemote creates a scoring server client. uri is the server root; the
// /invocations path is appended unless already present.
func NewRemote(uri string, opts ...ClientOption) *Remote {
	endpoint := strings.TrimRight(uri, "/")
	if !strings.HasSuffix(endpoint, "/invocations") {
		endpoint += "/invocations"
	}
	c := &Remote{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the invocation URL.
func (c *Remote) Endpoint() string {
	return c.endpoint
}

// invocationRequest is the pandas "split" orientation MLflow accepts.
type invocationRequest struct {
	DataframeSplit dataframeSplit `json:"dataframe_split"`
}

type dataframeSplit struct {
	Columns []string     `json:"columns"`
	Data    [][]*float64 `json:"data"`
}

// invocationResponse is the MLflow 2.x response body. Older servers
// return a bare JSON array instead.
type invocationResponse struct {
	Predictions json.RawMessage `json:"predictions"`
}

// Predict posts rows to the scoring server with retries and exponential
// backoff. Client errors (4xx other than 429) are not retried.
func (c *Remote) Predict(ctx context.Context, rows []domain.FeatureRow) ([]float64, error) {
	reqBody := invocationRequest{
		DataframeSplit: dataframeSplit{
			Columns: domain.FeatureColumns,
			Data:    make([][]*float64, len(rows)),
		},
	}
	for i, row := range rows {
		reqBody.DataframeSplit.Data[i] = domain.NullableFloats(row.Values())
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			observability.RecordRemoteRetry()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteStatus, resp.StatusCode, strings.TrimSpace(string(respBody)))
		}

		preds, err := decodePredictions(respBody)
		if err != nil {
			return nil, err
		}
		if len(preds) != len(rows) {
			return nil, fmt.Errorf("scoring server returned %d predictions for %d rows", len(preds), len(rows))
		}
		return preds, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// decodePredictions accepts {"predictions": [...]} or a bare array. Items
// may be scalars or single-element arrays.
func decodePredictions(body []byte) ([]float64, error) {
	raw := json.RawMessage(body)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var resp invocationResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		if resp.Predictions == nil {
			return nil, fmt.Errorf("response has no predictions")
		}
		raw = resp.Predictions
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal predictions: %w", err)
	}
	out := make([]float64, len(items))
	for i, item := range items {
		var v float64
		if err := json.Unmarshal(item, &v); err == nil {
			out[i] = v
			continue
		}
		var nested []float64
		if err := json.Unmarshal(item, &nested); err != nil || len(nested) != 1 {
			return nil, fmt.Errorf("prediction %d: not a number: %s", i, string(item))
		}
		out[i] = nested[0]
	}
	return out, nil
}
