package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// HTTPEmbedder calls an embedding service over HTTP
// (POST {endpoint}/embed with {"texts": [...]}).
// A circuit breaker sheds load when the service is down.
type HTTPEmbedder struct {
	endpoint string
	client   *http.Client
	breaker  *sifterr.CircuitBreaker

	mu   sync.RWMutex
	dims int
}

var _ Embedder = (*HTTPEmbedder)(nil)

// HTTPOption configures an HTTPEmbedder.
type HTTPOption func(*HTTPEmbedder)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(e *HTTPEmbedder) {
		e.client.Timeout = d
	}
}

// WithHTTPClient replaces the HTTP client (testing).
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(e *HTTPEmbedder) {
		e.client = c
	}
}

// WithDimensions pins the expected embedding dimension. Responses with a
// different dimension are rejected with ERR_402_DIMENSION_MISMATCH.
func WithDimensions(n int) HTTPOption {
	return func(e *HTTPEmbedder) {
		e.dims = n
	}
}

// NewHTTPEmbedder creates an embedder for the given service endpoint.
func NewHTTPEmbedder(endpoint string, opts ...HTTPOption) *HTTPEmbedder {
	e := &HTTPEmbedder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		breaker: sifterr.NewCircuitBreaker("embedder",
			sifterr.WithMaxFailures(5),
			sifterr.WithResetTimeout(30*time.Second)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Dimension  int         `json:"dimension,omitempty"`
}

// Embed generates an embedding for a single text.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if !e.breaker.Allow() {
		return nil, sifterr.New(sifterr.ErrCodeUpstreamUnavailable,
			"embedding service circuit open", nil).
			WithSuggestion("check that the embedding service is running")
	}

	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeInternal, "failed to encode embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeInternal, "failed to build embed request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.breaker.RecordFailure()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, sifterr.New(sifterr.ErrCodeUpstreamTimeout, "embedding request timed out", err)
		}
		return nil, sifterr.New(sifterr.ErrCodeUpstreamUnavailable, "embedding service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.breaker.RecordFailure()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, sifterr.New(sifterr.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding service returned %d: %s", resp.StatusCode, snippet), nil)
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		e.breaker.RecordFailure()
		return nil, sifterr.New(sifterr.ErrCodeEmbeddingFailed, "failed to decode embed response", err)
	}
	if len(out.Embeddings) != len(texts) {
		e.breaker.RecordFailure()
		return nil, sifterr.New(sifterr.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding count mismatch: want %d, got %d", len(texts), len(out.Embeddings)), nil)
	}

	e.breaker.RecordSuccess()

	e.mu.Lock()
	if e.dims == 0 && len(out.Embeddings[0]) > 0 {
		e.dims = len(out.Embeddings[0])
	}
	want := e.dims
	e.mu.Unlock()

	for i, v := range out.Embeddings {
		if want > 0 && len(v) != want {
			return nil, sifterr.New(sifterr.ErrCodeDimensionMismatch,
				fmt.Sprintf("embedding %d has dimension %d, want %d", i, len(v), want), nil)
		}
	}
	return out.Embeddings, nil
}

// Dimensions returns the embedding dimension observed so far.
func (e *HTTPEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

// Close implements Embedder.
func (e *HTTPEmbedder) Close() error {
	e.client.CloseIdleConnections()
	return nil
}
