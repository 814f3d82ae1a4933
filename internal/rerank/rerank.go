// Package rerank provides cross-encoder reranking of candidate documents
// against a query. The default implementation calls an HTTP rerank
// service; a no-op fallback preserves the incoming order when the
// service is unavailable or disabled.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// Result is one reranked document: the index into the input slice and
// the relevance score.
type Result struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Reranker scores documents by relevance to a query. Results are sorted
// by score descending and truncated to topK.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string, topK int) ([]Result, error)
}

// HTTPReranker calls a rerank service (POST {endpoint}/rerank).
type HTTPReranker struct {
	endpoint string
	client   *http.Client
	breaker  *sifterr.CircuitBreaker
}

var _ Reranker = (*HTTPReranker)(nil)

// Option configures an HTTPReranker.
type Option func(*HTTPReranker)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *HTTPReranker) {
		r.client.Timeout = d
	}
}

// NewHTTPReranker creates a reranker for the given service endpoint.
func NewHTTPReranker(endpoint string, opts ...Option) *HTTPReranker {
	r := &HTTPReranker{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		breaker: sifterr.NewCircuitBreaker("reranker",
			sifterr.WithMaxFailures(5),
			sifterr.WithResetTimeout(30*time.Second)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type rerankRequest struct {
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopK      int      `json:"top_k"`
}

type rerankResponse struct {
	Results []Result `json:"results"`
}

// Rerank scores documents against the query.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, documents []string, topK int) ([]Result, error) {
	if len(documents) == 0 {
		return nil, nil
	}
	if topK <= 0 || topK > len(documents) {
		topK = len(documents)
	}
	if !r.breaker.Allow() {
		return nil, sifterr.New(sifterr.ErrCodeUpstreamUnavailable,
			"rerank service circuit open", nil)
	}

	body, err := json.Marshal(rerankRequest{Query: query, Documents: documents, TopK: topK})
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeInternal, "failed to encode rerank request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeInternal, "failed to build rerank request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.breaker.RecordFailure()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, sifterr.New(sifterr.ErrCodeUpstreamTimeout, "rerank request timed out", err)
		}
		return nil, sifterr.New(sifterr.ErrCodeUpstreamUnavailable, "rerank service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.breaker.RecordFailure()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, sifterr.New(sifterr.ErrCodeRerankFailed,
			fmt.Sprintf("rerank service returned %d: %s", resp.StatusCode, snippet), nil)
	}

	var out rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		r.breaker.RecordFailure()
		return nil, sifterr.New(sifterr.ErrCodeRerankFailed, "failed to decode rerank response", err)
	}

	r.breaker.RecordSuccess()

	results := make([]Result, 0, len(out.Results))
	for _, res := range out.Results {
		if res.Index < 0 || res.Index >= len(documents) {
			continue
		}
		results = append(results, res)
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// NoOp preserves the incoming order with uniform scores. Used when
// reranking is disabled or as a degradation path.
type NoOp struct{}

var _ Reranker = (*NoOp)(nil)

// Rerank returns the first topK documents in original order with score 1.
func (NoOp) Rerank(_ context.Context, _ string, documents []string, topK int) ([]Result, error) {
	if topK <= 0 || topK > len(documents) {
		topK = len(documents)
	}
	results := make([]Result, topK)
	for i := 0; i < topK; i++ {
		results[i] = Result{Index: i, Score: 1.0}
	}
	return results, nil
}
