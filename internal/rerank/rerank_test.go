package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

func TestHTTPReranker_Rerank(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rerank", r.URL.Path)

		var req rerankRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "golang backend", req.Query)
		assert.Len(t, req.Documents, 3)

		// Reverse order, descending scores.
		_ = json.NewEncoder(w).Encode(rerankResponse{Results: []Result{
			{Index: 2, Score: 0.9},
			{Index: 0, Score: 0.5},
			{Index: 1, Score: 0.1},
		}})
	}))
	defer srv.Close()

	r := NewHTTPReranker(srv.URL)
	got, err := r.Rerank(context.Background(), "golang backend", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].Index)
	assert.Equal(t, 0, got[1].Index)
}

func TestHTTPReranker_DropsOutOfRangeIndices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(rerankResponse{Results: []Result{
			{Index: 5, Score: 0.9},
			{Index: 0, Score: 0.5},
		}})
	}))
	defer srv.Close()

	r := NewHTTPReranker(srv.URL)
	got, err := r.Rerank(context.Background(), "q", []string{"a", "b"}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0, got[0].Index)
}

func TestHTTPReranker_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	r := NewHTTPReranker(srv.URL)
	_, err := r.Rerank(context.Background(), "q", []string{"a"}, 1)
	require.Error(t, err)
	assert.Equal(t, sifterr.ErrCodeRerankFailed, sifterr.CodeOf(err))
}

func TestHTTPReranker_EmptyDocuments(t *testing.T) {
	r := NewHTTPReranker("http://unused")
	got, err := r.Rerank(context.Background(), "q", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNoOp_PreservesOrder(t *testing.T) {
	got, err := NoOp{}.Rerank(context.Background(), "q", []string{"a", "b", "c"}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Result{Index: 0, Score: 1.0}, got[0])
	assert.Equal(t, Result{Index: 1, Score: 1.0}, got[1])
}
