package search

import (
	"context"
	"math"
	"strings"

	"github.com/talentsift/talentsift/internal/embed"
)

// DenseRetriever ranks chunks by exact cosine similarity between the
// query embedding and each chunk embedding. The candidate pool is small
// enough after gating (at most a few thousand chunks) that a brute-force
// scan stays within single-digit milliseconds.
type DenseRetriever struct {
	embedder embed.Embedder
	chunks   Store
}

var _ Retriever = (*DenseRetriever)(nil)

// NewDenseRetriever creates a dense retriever.
func NewDenseRetriever(embedder embed.Embedder, s Store) *DenseRetriever {
	return &DenseRetriever{embedder: embedder, chunks: s}
}

// Retrieve embeds the query and returns up to limit chunks ranked by
// cosine similarity. Chunks without embeddings are skipped.
func (r *DenseRetriever) Retrieve(ctx context.Context, queryText string, candidateIDs []string, limit int) ([]RankedChunk, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, nil
	}

	queryVec, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	chunks, err := r.chunks.ChunksFor(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedChunk, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		ranked = append(ranked, RankedChunk{
			ChunkID:        c.ChunkID,
			ResumeID:       c.ResumeID,
			SectionType:    c.SectionType,
			SectionOrdinal: c.SectionOrdinal,
			Text:           c.ChunkText,
			Score:          Cosine(queryVec, c.Embedding),
		})
	}
	return sortAndRank(ranked, limit), nil
}

// Cosine computes cosine similarity. Mismatched dimensions and zero-norm
// vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
