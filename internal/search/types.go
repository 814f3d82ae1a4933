// Package search implements hybrid candidate retrieval: skill-gated
// lexical and dense search over resume chunks, RRF fusion, evidence
// selection, scoring, and optional cross-encoder reranking.
package search

import (
	"context"

	"github.com/talentsift/talentsift/internal/store"
)

// Match modes for the skill gate.
const (
	ModeMatchAll     = "match_all"
	ModeMatchAtLeast = "match_at_least"
)

// Why-matched markers on evidence items.
const (
	WhyDense  = "dense"
	WhySparse = "sparse"
	WhyBoth   = "both"
)

// RankedChunk is one chunk in a retrieval list, with its list-local
// score and 1-based rank.
type RankedChunk struct {
	ChunkID        string
	ResumeID       string
	SectionType    string
	SectionOrdinal int
	Text           string
	Score          float64
	Rank           int
}

// Evidence is a chunk snippet explaining why a candidate was selected.
type Evidence struct {
	ChunkText      string  `json:"chunkText"`
	SectionType    string  `json:"sectionType"`
	SectionOrdinal int     `json:"sectionOrdinal"`
	Score          float64 `json:"score"`
	WhyMatched     string  `json:"whyMatched,omitempty"`
}

// Request is a classic search query.
type Request struct {
	Skills          []string `json:"skills"`
	Mode            string   `json:"mode,omitempty"`
	MinMatch        int      `json:"minMatch,omitempty"`
	MinYOE          int      `json:"minYOE,omitempty"`
	LocationCountry string   `json:"locationCountry,omitempty"`
	Limit           int      `json:"limit,omitempty"`
	EnableRerank    bool     `json:"enableRerank,omitempty"`

	// QueryText overrides the dense/lexical query text. When empty the
	// engine derives it from the normalized skills.
	QueryText string `json:"queryText,omitempty"`
}

// Candidate is a fully scored search result.
type Candidate struct {
	ResumeID        string     `json:"resumeId"`
	Headline        string     `json:"headline,omitempty"`
	TotalYOE        int        `json:"totalYOE"`
	LocationCountry string     `json:"locationCountry,omitempty"`
	LocationCity    string     `json:"locationCity,omitempty"`
	MatchedSkills   []string   `json:"matchedSkills"`
	MatchedCount    int        `json:"matchedCount"`
	AvgConfidence   float64    `json:"avgConfidence"`
	CoverageRatio   float64    `json:"coverageRatio"`
	RRFScore        float64    `json:"rrfScore"`
	SkillScore      float64    `json:"skillScore"`
	SemanticScore   float64    `json:"semanticScore"`
	FinalScore      float64    `json:"finalScore"`
	RerankScore     float64    `json:"rerankScore,omitempty"`
	Evidence        []Evidence `json:"evidence"`
}

// HybridStats reports per-leg retrieval hit counts.
type HybridStats struct {
	LexicalHits int `json:"lexicalHits"`
	VectorHits  int `json:"vectorHits"`
}

// Meta describes how a response was produced.
type Meta struct {
	Query           []string    `json:"query"`
	TotalCandidates int         `json:"totalCandidates"`
	ResultsReturned int         `json:"resultsReturned"`
	LatencyMs       int64       `json:"latencyMs"`
	HybridStats     HybridStats `json:"hybridStats"`
}

// Response is a classic search result set.
type Response struct {
	Results []Candidate `json:"results"`
	Meta    Meta        `json:"meta"`
}

// Store is the persistence surface the engine reads.
// *store.SQLiteStore satisfies it.
type Store interface {
	GateBySkills(ctx context.Context, skills []string, threshold, limit int) ([]store.GatedCandidate, error)
	GetResumes(ctx context.Context, resumeIDs []string) (map[string]*store.Resume, error)
	ChunksFor(ctx context.Context, resumeIDs []string) ([]store.Chunk, error)
	ChunksMatchingTerms(ctx context.Context, resumeIDs, terms []string) ([]store.TermHit, error)
}

// Retriever produces a ranked chunk list for a query over a candidate
// pool. Both the lexical and dense retrievers implement it.
type Retriever interface {
	Retrieve(ctx context.Context, queryText string, candidateIDs []string, limit int) ([]RankedChunk, error)
}
