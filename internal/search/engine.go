package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	sifterr "github.com/talentsift/talentsift/internal/errors"
	"github.com/talentsift/talentsift/internal/rerank"
	"github.com/talentsift/talentsift/internal/skill"
	"github.com/talentsift/talentsift/internal/store"
)

// maxRerankDocChars bounds the evidence concatenation sent per candidate
// to the reranker.
const maxRerankDocChars = 2500

// Engine orchestrates the classic search pipeline: normalize, gate,
// filter, retrieve in parallel, fuse, score, optionally rerank, and
// join display fields.
type Engine struct {
	store    Store
	lexical  Retriever
	dense    Retriever
	reranker rerank.Reranker
	logger   *slog.Logger

	rrfK             int
	kDense           int
	kSparse          int
	kPool            int
	defaultLimit     int
	maxLimit         int
	rerankPool       int
	retrieverTimeout time.Duration
	rerankTimeout    time.Duration
}

// NewEngine creates a search engine over the given store.
// Retrievers default to term-frequency lexical search and must be
// supplied via options for dense search.
func NewEngine(s Store, opts ...Option) *Engine {
	e := &Engine{
		store:            s,
		lexical:          NewTermFreqRetriever(s),
		logger:           slog.Default(),
		rrfK:             DefaultRRFConstant,
		kDense:           300,
		kSparse:          300,
		kPool:            500,
		defaultLimit:     50,
		maxLimit:         100,
		rerankPool:       100,
		retrieverTimeout: 2 * time.Second,
		rerankTimeout:    5 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search runs a classic query end to end.
func (e *Engine) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	normalized := skill.NormalizeList(req.Skills)
	if len(normalized) == 0 {
		return nil, sifterr.InvalidQuery("at least one non-empty skill is required")
	}

	threshold := e.Threshold(req.Mode, req.MinMatch, len(normalized))
	limit := e.clampLimit(req.Limit)

	gated, err := e.store.GateBySkills(ctx, normalized, threshold, e.kPool)
	if err != nil {
		return nil, err
	}
	if len(gated) == 0 {
		return &Response{
			Results: []Candidate{},
			Meta:    e.meta(normalized, 0, 0, start, 0, 0),
		}, nil
	}

	cores, err := e.store.GetResumes(ctx, resumeIDs(gated))
	if err != nil {
		return nil, err
	}
	gated = FilterByProfile(gated, cores, req.MinYOE, req.LocationCountry)
	if len(gated) == 0 {
		return &Response{
			Results: []Candidate{},
			Meta:    e.meta(normalized, 0, 0, start, 0, 0),
		}, nil
	}

	queryText := req.QueryText
	if strings.TrimSpace(queryText) == "" {
		queryText = "Skills: " + strings.Join(normalized, "; ") + "."
	}

	denseList, sparseList := e.RetrieveParallel(ctx, queryText, resumeIDs(gated))

	rrf := RRFScores(e.rrfK, denseList, sparseList)
	evidence := BuildEvidence(denseList, sparseList, 3)

	candidates := e.ScoreCandidates(gated, len(normalized), rrf, evidence)

	if req.EnableRerank && e.reranker != nil {
		candidates = e.RerankCandidates(ctx, queryText, candidates, limit)
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	e.AttachProfiles(candidates, cores)

	return &Response{
		Results: candidates,
		Meta:    e.meta(normalized, len(gated), len(candidates), start, len(sparseList), len(denseList)),
	}, nil
}

// Threshold resolves the gating threshold for a match mode. A minMatch
// above the skill count clamps to it, so asking for 5-of-3 behaves as
// 3-of-3 rather than matching nothing.
func (e *Engine) Threshold(mode string, minMatch, totalSkills int) int {
	if mode == ModeMatchAll {
		return totalSkills
	}
	if minMatch < 1 {
		return 1
	}
	if minMatch > totalSkills {
		return totalSkills
	}
	return minMatch
}

// Gate runs skill gating against the ledger with the engine's pool cap.
func (e *Engine) Gate(ctx context.Context, skills []string, threshold int) ([]store.GatedCandidate, error) {
	return e.store.GateBySkills(ctx, skills, threshold, e.kPool)
}

// RetrieveParallel runs the dense and lexical retrievers fork-join, each
// under its own soft timeout. A failed leg degrades to an empty list and
// a warning; it never fails the query.
func (e *Engine) RetrieveParallel(ctx context.Context, queryText string, candidateIDs []string) (dense, sparse []RankedChunk) {
	var g errgroup.Group

	g.Go(func() error {
		if e.dense == nil {
			return nil
		}
		legCtx, cancel := context.WithTimeout(ctx, e.retrieverTimeout)
		defer cancel()
		list, err := e.dense.Retrieve(legCtx, queryText, candidateIDs, e.kDense)
		if err != nil {
			e.logger.Warn("dense_retrieval_degraded", slog.String("error", err.Error()))
			return nil
		}
		dense = list
		return nil
	})

	g.Go(func() error {
		legCtx, cancel := context.WithTimeout(ctx, e.retrieverTimeout)
		defer cancel()
		list, err := e.lexical.Retrieve(legCtx, queryText, candidateIDs, e.kSparse)
		if err != nil {
			e.logger.Warn("lexical_retrieval_degraded", slog.String("error", err.Error()))
			return nil
		}
		sparse = list
		return nil
	})

	_ = g.Wait()
	return dense, sparse
}

// ScoreCandidates combines gating coverage with fused retrieval scores
// and sorts by finalScore descending, ties broken by resumeId ascending.
func (e *Engine) ScoreCandidates(gated []store.GatedCandidate, totalSkills int, rrf map[string]float64, evidence map[string][]Evidence) []Candidate {
	type scored struct {
		cand  Candidate
		final float64
	}

	all := make([]scored, 0, len(gated))
	for _, g := range gated {
		coverage, skillScore := SkillScore(g.MatchedCount, totalSkills)
		rrfScore := rrf[g.ResumeID]
		semantic := SemanticScore(rrfScore)
		final := skillScore + semantic

		ev := evidence[g.ResumeID]
		if ev == nil {
			ev = []Evidence{}
		}

		all = append(all, scored{
			final: final,
			cand: Candidate{
				ResumeID:      g.ResumeID,
				MatchedSkills: g.MatchedSkills,
				MatchedCount:  g.MatchedCount,
				AvgConfidence: round2(g.AvgConfidence),
				CoverageRatio: round2(coverage),
				RRFScore:      round4(rrfScore),
				SkillScore:    round1(skillScore),
				SemanticScore: round1(semantic),
				FinalScore:    round1(final),
				Evidence:      ev,
			},
		})
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].final != all[j].final {
			return all[i].final > all[j].final
		}
		return all[i].cand.ResumeID < all[j].cand.ResumeID
	})

	out := make([]Candidate, len(all))
	for i, s := range all {
		out[i] = s.cand
	}
	return out
}

// RerankCandidates reranks the head of the candidate list (limit·2,
// capped at the rerank pool size) by cross-encoder score over each
// candidate's concatenated evidence. Failures keep the fused order,
// and so does a missing reranker.
func (e *Engine) RerankCandidates(ctx context.Context, queryText string, candidates []Candidate, limit int) []Candidate {
	if e.reranker == nil {
		return candidates
	}
	pool := limit * 2
	if pool > e.rerankPool {
		pool = e.rerankPool
	}
	if pool > len(candidates) {
		pool = len(candidates)
	}
	if pool == 0 {
		return candidates
	}

	docs := make([]string, pool)
	for i := 0; i < pool; i++ {
		docs[i] = rerankDoc(candidates[i])
	}

	rctx, cancel := context.WithTimeout(ctx, e.rerankTimeout)
	defer cancel()

	results, err := e.reranker.Rerank(rctx, queryText, docs, pool)
	if err != nil {
		e.logger.Warn("rerank_degraded", slog.String("error", err.Error()))
		return candidates
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})

	reordered := make([]Candidate, 0, len(candidates))
	seen := make(map[int]struct{}, len(results))
	for _, r := range results {
		c := candidates[r.Index]
		c.RerankScore = round4(r.Score)
		reordered = append(reordered, c)
		seen[r.Index] = struct{}{}
	}
	for i := 0; i < pool; i++ {
		if _, ok := seen[i]; !ok {
			reordered = append(reordered, candidates[i])
		}
	}
	return append(reordered, candidates[pool:]...)
}

// AttachProfiles fills display fields from resume cores in place.
func (e *Engine) AttachProfiles(candidates []Candidate, cores map[string]*store.Resume) {
	for i := range candidates {
		core, ok := cores[candidates[i].ResumeID]
		if !ok {
			continue
		}
		candidates[i].Headline = core.Headline()
		candidates[i].TotalYOE = core.TotalYOE
		candidates[i].LocationCountry = core.LocationCountry
		candidates[i].LocationCity = core.LocationCity
	}
}

// RRFConstant returns the engine's RRF smoothing parameter.
func (e *Engine) RRFConstant() int { return e.rrfK }

// HasReranker reports whether a cross-encoder reranker is wired.
func (e *Engine) HasReranker() bool { return e.reranker != nil }

// PoolSize returns the gating pool cap.
func (e *Engine) PoolSize() int { return e.kPool }

// Profiles fetches resume cores for the given candidates.
func (e *Engine) Profiles(ctx context.Context, ids []string) (map[string]*store.Resume, error) {
	return e.store.GetResumes(ctx, ids)
}

func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.defaultLimit
	}
	if limit > e.maxLimit {
		return e.maxLimit
	}
	return limit
}

func (e *Engine) meta(query []string, total, returned int, start time.Time, lexHits, vecHits int) Meta {
	return Meta{
		Query:           query,
		TotalCandidates: total,
		ResultsReturned: returned,
		LatencyMs:       time.Since(start).Milliseconds(),
		HybridStats:     HybridStats{LexicalHits: lexHits, VectorHits: vecHits},
	}
}

// rerankDoc concatenates a candidate's evidence snippets, bounded.
func rerankDoc(c Candidate) string {
	var b strings.Builder
	for _, ev := range c.Evidence {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		remaining := maxRerankDocChars - b.Len()
		if remaining <= 0 {
			break
		}
		text := ev.ChunkText
		if len(text) > remaining {
			text = text[:remaining]
		}
		b.WriteString(text)
	}
	return b.String()
}

// FilterByProfile applies minYOE and locationCountry filters against
// the resume cores. Candidates without a core profile are dropped.
func FilterByProfile(gated []store.GatedCandidate, cores map[string]*store.Resume, minYOE int, country string) []store.GatedCandidate {
	if minYOE <= 0 && country == "" {
		return gated
	}
	country = strings.ToLower(country)

	out := make([]store.GatedCandidate, 0, len(gated))
	for _, g := range gated {
		core, ok := cores[g.ResumeID]
		if !ok {
			continue
		}
		if minYOE > 0 && core.TotalYOE < minYOE {
			continue
		}
		if country != "" && !strings.Contains(strings.ToLower(core.LocationCountry), country) {
			continue
		}
		out = append(out, g)
	}
	return out
}

func resumeIDs(gated []store.GatedCandidate) []string {
	ids := make([]string, len(gated))
	for i, g := range gated {
		ids[i] = g.ResumeID
	}
	return ids
}
