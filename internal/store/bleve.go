package store

import (
	"context"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/search/query"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// BleveChunkIndex is an optional lexical backend for chunk retrieval,
// backed by a Bleve full-text index with BM25-style scoring. The SQLite
// term matcher remains the default; this backend trades ingest time for
// better lexical ranking on large corpora.
type BleveChunkIndex struct {
	index bleve.Index
	path  string
}

// bleveChunkDoc is the indexed representation of a chunk.
type bleveChunkDoc struct {
	ResumeID       string `json:"resumeId"`
	SectionType    string `json:"sectionType"`
	SectionOrdinal int    `json:"sectionOrdinal"`
	ChunkText      string `json:"chunkText"`
}

// BleveHit is one lexical search result from the Bleve backend.
type BleveHit struct {
	ChunkID        string
	ResumeID       string
	SectionType    string
	SectionOrdinal int
	ChunkText      string
	Score          float64
}

// NewBleveChunkIndex opens or creates a Bleve chunk index at path.
// An empty path creates an in-memory index.
func NewBleveChunkIndex(path string) (*BleveChunkIndex, error) {
	mapping := bleve.NewIndexMapping()

	doc := bleve.NewDocumentMapping()

	idField := bleve.NewTextFieldMapping()
	idField.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("resumeId", idField)
	doc.AddFieldMappingsAt("sectionType", idField)

	textField := bleve.NewTextFieldMapping()
	doc.AddFieldMappingsAt("chunkText", textField)

	ordField := bleve.NewNumericFieldMapping()
	doc.AddFieldMappingsAt("sectionOrdinal", ordField)

	mapping.DefaultMapping = doc

	var index bleve.Index
	var err error
	if path == "" {
		index, err = bleve.NewMemOnly(mapping)
	} else if _, statErr := os.Stat(path); statErr == nil {
		index, err = bleve.Open(path)
	} else {
		index, err = bleve.New(path, mapping)
	}
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to open lexical index", err)
	}

	return &BleveChunkIndex{index: index, path: path}, nil
}

// Close closes the index.
func (b *BleveChunkIndex) Close() error {
	return b.index.Close()
}

// IndexChunks adds or replaces chunks in the index.
func (b *BleveChunkIndex) IndexChunks(chunks []Chunk) error {
	batch := b.index.NewBatch()
	for _, c := range chunks {
		doc := bleveChunkDoc{
			ResumeID:       c.ResumeID,
			SectionType:    c.SectionType,
			SectionOrdinal: c.SectionOrdinal,
			ChunkText:      c.ChunkText,
		}
		if err := batch.Index(c.ChunkID, doc); err != nil {
			return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to index chunk", err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to commit index batch", err)
	}
	return nil
}

// DeleteResume removes all chunks of a resume from the index.
func (b *BleveChunkIndex) DeleteResume(ctx context.Context, resumeID string) error {
	q := query.NewTermQuery(resumeID)
	q.SetField("resumeId")
	req := bleve.NewSearchRequestOptions(q, 10000, 0, false)

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to find chunks for delete", err)
	}

	batch := b.index.NewBatch()
	for _, hit := range res.Hits {
		batch.Delete(hit.ID)
	}
	if err := b.index.Batch(batch); err != nil {
		return sifterr.New(sifterr.ErrCodeStoreUnavailable, "failed to delete chunks", err)
	}
	return nil
}

// Search runs a full-text query over chunk text, optionally restricted to
// the given resumes, and returns up to limit hits by descending score.
func (b *BleveChunkIndex) Search(ctx context.Context, text string, resumeIDs []string, limit int) ([]BleveHit, error) {
	match := bleve.NewMatchQuery(text)
	match.SetField("chunkText")

	var q query.Query = match
	if len(resumeIDs) > 0 {
		terms := make([]query.Query, 0, len(resumeIDs))
		for _, id := range resumeIDs {
			tq := query.NewTermQuery(id)
			tq.SetField("resumeId")
			terms = append(terms, tq)
		}
		q = bleve.NewConjunctionQuery(match, bleve.NewDisjunctionQuery(terms...))
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"resumeId", "sectionType", "sectionOrdinal", "chunkText"}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, sifterr.New(sifterr.ErrCodeSearchFailed, "lexical index search failed", err)
	}

	hits := make([]BleveHit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := BleveHit{ChunkID: h.ID, Score: h.Score}
		hit.ResumeID, _ = h.Fields["resumeId"].(string)
		hit.SectionType, _ = h.Fields["sectionType"].(string)
		hit.ChunkText, _ = h.Fields["chunkText"].(string)
		if ord, ok := h.Fields["sectionOrdinal"].(float64); ok {
			hit.SectionOrdinal = int(ord)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
