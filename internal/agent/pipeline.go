package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentsift/talentsift/internal/config"
	sifterr "github.com/talentsift/talentsift/internal/errors"
	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/store"
)

// Match quality of an assembled shortlist.
const (
	MatchStrong = "strong"
	MatchWeak   = "weak"
	MatchNone   = "none"
)

// Store is the persistence surface the pipeline reads. It extends the
// search engine's view with an ungated resume listing for the
// weak-match fallback.
type Store interface {
	search.Store
	ListResumeIDs(ctx context.Context, limit int) ([]string, error)
}

// Result is the terminal payload of a pipeline run.
type Result struct {
	RequestID            string             `json:"requestId"`
	Results              []search.Candidate `json:"results"`
	TotalCandidatesFound int                `json:"total_candidates_found"`
	MatchQuality         string             `json:"match_quality"`
	MissionSpec          *MissionSpec       `json:"mission_spec"`
	SuggestedRefinements []string           `json:"suggested_refinements"`
	StageTimings         map[string]float64 `json:"stage_timings"`
}

// Pipeline is the agentic shortlist stage machine. Stages run in a
// fixed order on a single goroutine; every stage boundary emits a
// stage_complete event, so the stream is totally ordered.
type Pipeline struct {
	store     Store
	engine    *search.Engine
	extractor Extractor
	logger    *slog.Logger
	cfg       config.AgentConfig
}

// NewPipeline wires a pipeline over an existing search engine.
func NewPipeline(s Store, engine *search.Engine, extractor Extractor, cfg config.AgentConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinRelevanceScore <= 0 {
		cfg.MinRelevanceScore = 20
	}
	if cfg.MinStrongCandidates <= 0 {
		cfg.MinStrongCandidates = 3
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 25
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 20 * time.Second
	}
	return &Pipeline{store: s, engine: engine, extractor: extractor, logger: logger, cfg: cfg}
}

// Run executes the pipeline and streams its events. The channel is
// closed after the terminal done (or error) event. Cancelling ctx
// aborts the current stage and drops any remaining events. The hard
// query timeout only bounds the stages: a timed-out run still delivers
// its terminal error event, the emitter answers to the caller's ctx.
func (p *Pipeline) Run(ctx context.Context, query string) <-chan Event {
	runCtx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	em := newEmitter(ctx, p.cfg.EventBuffer)

	go func() {
		defer cancel()
		defer em.close()

		if err := p.run(runCtx, em, query); err != nil {
			p.logger.Error("pipeline_failed", slog.String("error", err.Error()))
			em.emit(Event{Type: EventError, Message: err.Error()})
			return
		}
		em.emit(Event{Type: EventDone})
	}()

	return em.ch
}

func (p *Pipeline) run(ctx context.Context, em *emitter, query string) error {
	if strings.TrimSpace(query) == "" {
		return sifterr.InvalidQuery("query text is required")
	}

	timings := make(map[string]float64)
	stageStart := time.Now()

	// Stage 1: jd_understanding.
	em.agentStart("JD Understanding", "Analyzing your query to extract structured requirements")
	em.thought("JD Understanding", fmt.Sprintf("Reading query: %q", truncate(query, 100)))

	spec, err := p.extractor.Extract(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Warn("intent_extraction_degraded", slog.String("error", err.Error()))
		em.thought("JD Understanding", "Intent extraction unavailable, using keyword parsing")
		spec = HeuristicMission(query)
	}
	em.emit(Event{Type: EventMissionSpec, Agent: "JD Understanding", Data: spec})
	timings[StageJDUnderstanding] = stageEnd(em, StageJDUnderstanding, &stageStart)

	// Stage 2: retrieval.
	em.agentStart("Retriever", fmt.Sprintf("Searching with %d must-have skills", len(spec.MustHave)))

	gated, err := p.gate(ctx, em, spec)
	if err != nil {
		return err
	}

	queryText := spec.RawQuery
	if strings.TrimSpace(queryText) == "" {
		queryText = query
	}

	em.toolCall("hybrid_retrieve", map[string]any{"query": truncate(queryText, 200), "candidates": len(gated)})
	retrStart := time.Now()
	dense, sparse := p.engine.RetrieveParallel(ctx, queryText, candidateIDs(gated))
	em.toolResult("hybrid_retrieve", time.Since(retrStart),
		fmt.Sprintf("dense=%d sparse=%d chunks", len(dense), len(sparse)))
	timings[StageRetrieval] = stageEnd(em, StageRetrieval, &stageStart)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Stage 3: fusion.
	rrf := search.RRFScores(p.engine.RRFConstant(), dense, sparse)
	timings[StageFusion] = stageEnd(em, StageFusion, &stageStart)

	// Stage 4: evidence_building.
	evidence := search.BuildEvidence(dense, sparse, 3)
	timings[StageEvidence] = stageEnd(em, StageEvidence, &stageStart)

	// Stage 5: ranking.
	em.agentStart("Ranker", "Scoring and reranking candidates")
	candidates := p.engine.ScoreCandidates(gated, len(spec.MustHave), rrf, evidence)
	candidates = p.rerank(ctx, em, queryText, candidates)
	timings[StageRanking] = stageEnd(em, StageRanking, &stageStart)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	// Stage 6: assembly, with the weak-match fallback.
	quality := MatchStrong
	if p.strongCount(candidates) < p.cfg.MinStrongCandidates {
		em.thought("Assembly", "Few strong matches, expanding the search without skill gating")
		fallback, err := p.ungatedPass(ctx, em, queryText, len(spec.MustHave))
		if err != nil {
			return err
		}
		if len(fallback) == 0 {
			quality = MatchNone
			candidates = []search.Candidate{}
		} else {
			quality = MatchWeak
			candidates = fallback
		}
	}

	total := len(candidates)
	if len(candidates) > p.cfg.MaxResults {
		candidates = candidates[:p.cfg.MaxResults]
	}

	if len(candidates) > 0 {
		cores, err := p.engine.Profiles(ctx, candidateResumeIDs(candidates))
		if err != nil {
			return err
		}
		p.engine.AttachProfiles(candidates, cores)
	}
	timings[StageAssembly] = stageEnd(em, StageAssembly, &stageStart)

	em.emit(Event{Type: EventResult, Data: &Result{
		RequestID:            uuid.NewString(),
		Results:              candidates,
		TotalCandidatesFound: total,
		MatchQuality:         quality,
		MissionSpec:          spec,
		SuggestedRefinements: spec.Clarifications,
		StageTimings:         timings,
	}})
	return nil
}

// gate resolves the candidate pool for retrieval. With must-have
// skills present the ledger gate applies at the agentic threshold;
// without any it falls back to the full resume pool.
func (p *Pipeline) gate(ctx context.Context, em *emitter, spec *MissionSpec) ([]store.GatedCandidate, error) {
	var (
		gated []store.GatedCandidate
		err   error
	)
	if len(spec.MustHave) > 0 {
		threshold := agenticThreshold(len(spec.MustHave))
		em.toolCall("gate_candidates", map[string]any{"skills": spec.MustHave, "threshold": threshold})
		start := time.Now()
		gated, err = p.engine.Gate(ctx, spec.MustHave, threshold)
		if err != nil {
			return nil, err
		}
		em.toolResult("gate_candidates", time.Since(start),
			fmt.Sprintf("%d candidates passed the skill gate", len(gated)))
	} else {
		gated, err = p.allCandidates(ctx)
		if err != nil {
			return nil, err
		}
	}

	minYears := 0
	if spec.MinYears != nil {
		minYears = *spec.MinYears
	}
	location := ""
	if spec.Location != nil {
		location = *spec.Location
	}
	if minYears > 0 || location != "" {
		cores, err := p.engine.Profiles(ctx, candidateIDs(gated))
		if err != nil {
			return nil, err
		}
		gated = search.FilterByProfile(gated, cores, minYears, location)
	}
	return gated, nil
}

// ungatedPass re-runs retrieval over the whole resume pool, keeping
// only candidates with at least one retrieval hit, and carries them
// through reranking.
func (p *Pipeline) ungatedPass(ctx context.Context, em *emitter, queryText string, totalSkills int) ([]search.Candidate, error) {
	gated, err := p.allCandidates(ctx)
	if err != nil {
		return nil, err
	}
	if len(gated) == 0 {
		return nil, nil
	}

	dense, sparse := p.engine.RetrieveParallel(ctx, queryText, candidateIDs(gated))
	rrf := search.RRFScores(p.engine.RRFConstant(), dense, sparse)

	hits := gated[:0]
	for _, g := range gated {
		if rrf[g.ResumeID] > 0 {
			hits = append(hits, g)
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}

	evidence := search.BuildEvidence(dense, sparse, 3)
	candidates := p.engine.ScoreCandidates(hits, totalSkills, rrf, evidence)
	return p.rerank(ctx, em, queryText, candidates), nil
}

func (p *Pipeline) rerank(ctx context.Context, em *emitter, queryText string, candidates []search.Candidate) []search.Candidate {
	if len(candidates) == 0 || !p.engine.HasReranker() {
		return candidates
	}
	em.toolCall("cross_encoder_rerank", map[string]any{"candidates": len(candidates)})
	start := time.Now()
	reranked := p.engine.RerankCandidates(ctx, queryText, candidates, p.cfg.MaxResults)
	em.toolResult("cross_encoder_rerank", time.Since(start),
		fmt.Sprintf("reranked %d candidates", len(reranked)))
	return reranked
}

func (p *Pipeline) allCandidates(ctx context.Context) ([]store.GatedCandidate, error) {
	ids, err := p.store.ListResumeIDs(ctx, p.engine.PoolSize())
	if err != nil {
		return nil, err
	}
	gated := make([]store.GatedCandidate, len(ids))
	for i, id := range ids {
		gated[i] = store.GatedCandidate{ResumeID: id, MatchedSkills: []string{}}
	}
	return gated, nil
}

func (p *Pipeline) strongCount(candidates []search.Candidate) int {
	n := 0
	for _, c := range candidates {
		if c.FinalScore > p.cfg.MinRelevanceScore {
			n++
		}
	}
	return n
}

// agenticThreshold is the match_at_least floor used in agentic mode:
// at least half of the must-have skills, rounded up.
func agenticThreshold(mustHave int) int {
	t := (mustHave + 1) / 2
	if t < 1 {
		t = 1
	}
	return t
}

// stageEnd emits a stage_complete event, records the elapsed seconds,
// and resets the stage clock.
func stageEnd(em *emitter, stage string, stageStart *time.Time) float64 {
	elapsed := time.Since(*stageStart)
	em.stageComplete(stage, elapsed)
	*stageStart = time.Now()
	return elapsed.Seconds()
}

func candidateIDs(gated []store.GatedCandidate) []string {
	ids := make([]string, len(gated))
	for i, g := range gated {
		ids[i] = g.ResumeID
	}
	return ids
}

func candidateResumeIDs(candidates []search.Candidate) []string {
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ResumeID
	}
	return ids
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
