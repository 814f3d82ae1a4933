package embed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

func newEmbedServer(t *testing.T, dims int, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		require.Equal(t, "/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		vecs := make([][]float32, len(req.Texts))
		for i := range req.Texts {
			v := make([]float32, dims)
			v[0] = float32(len(req.Texts[i]))
			vecs[i] = v
		}
		_ = json.NewEncoder(w).Encode(embedResponse{Embeddings: vecs, Dimension: dims})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPEmbedder_EmbedBatch(t *testing.T) {
	srv := newEmbedServer(t, 4, nil)
	e := NewHTTPEmbedder(srv.URL)

	vecs, err := e.EmbedBatch(context.Background(), []string{"go", "python"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 4)
	assert.Equal(t, 4, e.Dimensions())
}

func TestHTTPEmbedder_DimensionMismatch(t *testing.T) {
	srv := newEmbedServer(t, 4, nil)
	e := NewHTTPEmbedder(srv.URL, WithDimensions(8))

	_, err := e.Embed(context.Background(), "go")
	require.Error(t, err)
	assert.Equal(t, sifterr.ErrCodeDimensionMismatch, sifterr.CodeOf(err))
}

func TestHTTPEmbedder_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL)
	_, err := e.Embed(context.Background(), "go")
	require.Error(t, err)
	assert.Equal(t, sifterr.ErrCodeEmbeddingFailed, sifterr.CodeOf(err))
}

func TestHTTPEmbedder_CircuitOpensAfterFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewHTTPEmbedder(srv.URL)
	for i := 0; i < 5; i++ {
		_, _ = e.Embed(context.Background(), "x")
	}

	_, err := e.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, sifterr.ErrCodeUpstreamUnavailable, sifterr.CodeOf(err))
}

func TestCachedEmbedder_ServesFromCache(t *testing.T) {
	var calls atomic.Int64
	srv := newEmbedServer(t, 4, &calls)

	inner := NewHTTPEmbedder(srv.URL)
	c, err := NewCachedEmbedder(inner, 10)
	require.NoError(t, err)

	first, err := c.Embed(context.Background(), "golang")
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), "golang")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, calls.Load())

	hits, misses := c.Stats()
	assert.EqualValues(t, 1, hits)
	assert.EqualValues(t, 1, misses)
}

func TestCachedEmbedder_BatchMixesCachedAndFresh(t *testing.T) {
	var calls atomic.Int64
	srv := newEmbedServer(t, 4, &calls)

	inner := NewHTTPEmbedder(srv.URL)
	c, err := NewCachedEmbedder(inner, 10)
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "aa")
	require.NoError(t, err)

	vecs, err := c.EmbedBatch(context.Background(), []string{"aa", "bbbb"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, float32(2), vecs[0][0])
	assert.Equal(t, float32(4), vecs[1][0])
	assert.EqualValues(t, 2, calls.Load(), "cached text must not be re-sent")
}

func TestStaticEmbedder_Deterministic(t *testing.T) {
	e := NewStaticEmbedder(64)

	a1, err := e.Embed(context.Background(), "senior golang engineer")
	require.NoError(t, err)
	a2, err := e.Embed(context.Background(), "senior golang engineer")
	require.NoError(t, err)
	assert.Equal(t, a1, a2)

	b, err := e.Embed(context.Background(), "completely different text")
	require.NoError(t, err)
	assert.NotEqual(t, a1, b)

	// Unit norm.
	var norm float64
	for _, v := range a1 {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)
}

func TestStaticEmbedder_EmptyTextZeroVector(t *testing.T) {
	e := NewStaticEmbedder(16)
	v, err := e.Embed(context.Background(), "")
	require.NoError(t, err)
	for _, x := range v {
		assert.Zero(t, x)
	}
}

type flakyEmbedder struct {
	StaticEmbedder
	failures  int
	attempted int
}

func (f *flakyEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.attempted++
	if f.attempted <= f.failures {
		return nil, sifterr.New(sifterr.ErrCodeUpstreamUnavailable, "down", nil)
	}
	return f.StaticEmbedder.Embed(ctx, text)
}

func TestRetryingEmbedder_RecoversFromTransientFailure(t *testing.T) {
	inner := &flakyEmbedder{StaticEmbedder: *NewStaticEmbedder(8), failures: 2}
	r := NewRetryingEmbedder(inner, 3, time.Millisecond)

	v, err := r.Embed(context.Background(), "go")
	require.NoError(t, err)
	assert.Len(t, v, 8)
	assert.Equal(t, 3, inner.attempted)
}

func TestRetryingEmbedder_GivesUpAfterMaxAttempts(t *testing.T) {
	inner := &flakyEmbedder{StaticEmbedder: *NewStaticEmbedder(8), failures: 10}
	r := NewRetryingEmbedder(inner, 3, time.Millisecond)

	_, err := r.Embed(context.Background(), "go")
	require.Error(t, err)
	assert.Equal(t, 3, inner.attempted)
}

func TestRetryingEmbedder_DoesNotRetryNonRetryable(t *testing.T) {
	attempts := 0
	inner := embedderFunc(func(context.Context, string) ([]float32, error) {
		attempts++
		return nil, sifterr.InvalidQuery("bad input")
	})
	r := NewRetryingEmbedder(inner, 3, time.Millisecond)

	_, err := r.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.As(err, new(*sifterr.SiftError)))
	assert.Equal(t, 1, attempts)
}

// embedderFunc adapts a single-text function to the Embedder interface.
type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

func (f embedderFunc) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f embedderFunc) Dimensions() int { return 0 }
func (f embedderFunc) Close() error    { return nil }
