package embed

import (
	"context"
	"errors"
	"time"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// RetryingEmbedder retries transient upstream failures with exponential
// backoff. Non-retryable errors (bad input, dimension mismatch) fail fast.
type RetryingEmbedder struct {
	inner       Embedder
	maxAttempts int
	baseDelay   time.Duration
}

var _ Embedder = (*RetryingEmbedder)(nil)

// NewRetryingEmbedder wraps inner with up to maxAttempts tries.
func NewRetryingEmbedder(inner Embedder, maxAttempts int, baseDelay time.Duration) *RetryingEmbedder {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 200 * time.Millisecond
	}
	return &RetryingEmbedder{inner: inner, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

func retryable(err error) bool {
	var se *sifterr.SiftError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

func (r *RetryingEmbedder) do(ctx context.Context, fn func() error) error {
	var err error
	delay := r.baseDelay
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if err = fn(); err == nil || !retryable(err) {
			return err
		}
		if attempt == r.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

// Embed retries transient failures.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := r.do(ctx, func() error {
		var e error
		out, e = r.inner.Embed(ctx, text)
		return e
	})
	return out, err
}

// EmbedBatch retries transient failures.
func (r *RetryingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := r.do(ctx, func() error {
		var e error
		out, e = r.inner.EmbedBatch(ctx, texts)
		return e
	})
	return out, err
}

// Dimensions delegates to the inner embedder.
func (r *RetryingEmbedder) Dimensions() int {
	return r.inner.Dimensions()
}

// Close closes the inner embedder.
func (r *RetryingEmbedder) Close() error {
	return r.inner.Close()
}
