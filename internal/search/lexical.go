package search

import (
	"context"
	"regexp"
	"sort"

	"github.com/talentsift/talentsift/internal/store"
)

var termSplitRe = regexp.MustCompile(`[,;\s]+`)

// SplitTerms tokenizes query text for lexical matching: split on commas,
// semicolons, and whitespace; drop tokens of length <= 1.
func SplitTerms(queryText string) []string {
	var terms []string
	for _, t := range termSplitRe.Split(queryText, -1) {
		if len(t) > 1 {
			terms = append(terms, t)
		}
	}
	return terms
}

// TermFreqRetriever is the default lexical retriever: occurrence counting
// over the chunk store's term matcher. The full matching pool is scored
// and sorted before the limit is applied, so high-scoring chunks beyond
// the pool head are never dropped.
type TermFreqRetriever struct {
	chunks Store
}

var _ Retriever = (*TermFreqRetriever)(nil)

// NewTermFreqRetriever creates a lexical retriever over the given store.
func NewTermFreqRetriever(s Store) *TermFreqRetriever {
	return &TermFreqRetriever{chunks: s}
}

// Retrieve returns up to limit chunks ranked by total term hits.
// An empty term set yields an empty result, not an error.
func (r *TermFreqRetriever) Retrieve(ctx context.Context, queryText string, candidateIDs []string, limit int) ([]RankedChunk, error) {
	terms := SplitTerms(queryText)
	if len(terms) == 0 {
		return nil, nil
	}

	hits, err := r.chunks.ChunksMatchingTerms(ctx, candidateIDs, terms)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedChunk, 0, len(hits))
	for _, h := range hits {
		ranked = append(ranked, RankedChunk{
			ChunkID:        h.ChunkID,
			ResumeID:       h.ResumeID,
			SectionType:    h.SectionType,
			SectionOrdinal: h.SectionOrdinal,
			Text:           h.ChunkText,
			Score:          float64(h.TotalHits),
		})
	}
	return sortAndRank(ranked, limit), nil
}

// BleveRetriever is the optional lexical backend over a Bleve full-text
// index, trading term counting for BM25-style scoring.
type BleveRetriever struct {
	index *store.BleveChunkIndex
}

var _ Retriever = (*BleveRetriever)(nil)

// NewBleveRetriever creates a lexical retriever over a Bleve index.
func NewBleveRetriever(idx *store.BleveChunkIndex) *BleveRetriever {
	return &BleveRetriever{index: idx}
}

// Retrieve returns up to limit chunks ranked by index score.
func (r *BleveRetriever) Retrieve(ctx context.Context, queryText string, candidateIDs []string, limit int) ([]RankedChunk, error) {
	if len(SplitTerms(queryText)) == 0 {
		return nil, nil
	}

	hits, err := r.index.Search(ctx, queryText, candidateIDs, limit)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedChunk, 0, len(hits))
	for _, h := range hits {
		ranked = append(ranked, RankedChunk{
			ChunkID:        h.ChunkID,
			ResumeID:       h.ResumeID,
			SectionType:    h.SectionType,
			SectionOrdinal: h.SectionOrdinal,
			Text:           h.ChunkText,
			Score:          h.Score,
		})
	}
	return sortAndRank(ranked, limit), nil
}

// sortAndRank orders chunks by score descending with a deterministic
// tiebreak, truncates to limit, and assigns ranks 1..N.
func sortAndRank(chunks []RankedChunk, limit int) []RankedChunk {
	sort.SliceStable(chunks, func(i, j int) bool {
		if chunks[i].Score != chunks[j].Score {
			return chunks[i].Score > chunks[j].Score
		}
		if chunks[i].ResumeID != chunks[j].ResumeID {
			return chunks[i].ResumeID < chunks[j].ResumeID
		}
		return chunks[i].SectionOrdinal < chunks[j].SectionOrdinal
	})
	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}
	for i := range chunks {
		chunks[i].Rank = i + 1
	}
	return chunks
}
