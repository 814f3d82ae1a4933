package agent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/talentsift/internal/config"
	"github.com/talentsift/talentsift/internal/embed"
	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/store"
)

type seedResume struct {
	resumeID string
	yoe      int
	skills   []string
	chunks   []string
}

func newTestPipeline(t *testing.T, seeds []seedResume, cfg config.AgentConfig) *Pipeline {
	t.Helper()
	s, err := store.NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	embedder := embed.NewStaticEmbedder(64)
	ctx := context.Background()
	for _, seed := range seeds {
		core := &store.Resume{ResumeID: seed.resumeID, TotalYOE: seed.yoe}
		entries := make([]store.SkillEntry, len(seed.skills))
		for i, sk := range seed.skills {
			entries[i] = store.SkillEntry{
				ResumeID: seed.resumeID, SkillCanonical: sk,
				Confidence: 1.0, EvidenceCount: 1,
			}
		}
		chunks := make([]store.Chunk, len(seed.chunks))
		for i, text := range seed.chunks {
			vec, err := embedder.Embed(ctx, text)
			require.NoError(t, err)
			chunks[i] = store.Chunk{
				ChunkID:        fmt.Sprintf("%s-%d", seed.resumeID, i),
				ResumeID:       seed.resumeID,
				SectionType:    store.SectionExperience,
				SectionOrdinal: i,
				ChunkText:      text,
				Embedding:      vec,
			}
		}
		require.NoError(t, s.UpsertResume(ctx, core, &store.PersonalInfo{}, entries, chunks))
	}

	engine := search.NewEngine(s, search.WithDense(search.NewDenseRetriever(embedder, s)))
	return NewPipeline(s, engine, HeuristicExtractor{}, cfg, nil)
}

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()
	var events []Event
	deadline := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-deadline:
			t.Fatal("pipeline did not finish in time")
		}
	}
}

func eventTypes(events []Event) []EventType {
	types := make([]EventType, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func findResult(t *testing.T, events []Event) *Result {
	t.Helper()
	for _, ev := range events {
		if ev.Type == EventResult {
			res, ok := ev.Data.(*Result)
			require.True(t, ok, "result event carries *Result")
			return res
		}
	}
	t.Fatal("no result event in stream")
	return nil
}

func strongSeeds() []seedResume {
	return []seedResume{
		{resumeID: "alpha", yoe: 6, skills: []string{"python", "django"},
			chunks: []string{"Built Python services with Django and PostgreSQL."}},
		{resumeID: "beta", yoe: 4, skills: []string{"python"},
			chunks: []string{"Python data tooling and automation."}},
	}
}

func TestPipeline_StrongMatchStream(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{MinStrongCandidates: 1})

	events := collect(t, p.Run(context.Background(), "python, django"))
	types := eventTypes(events)

	require.NotEmpty(t, types)
	assert.Equal(t, EventDone, types[len(types)-1], "done is terminal")
	assert.Equal(t, EventResult, types[len(types)-2], "result precedes done")

	res := findResult(t, events)
	assert.Equal(t, MatchStrong, res.MatchQuality)
	require.NotEmpty(t, res.Results)
	assert.Equal(t, "alpha", res.Results[0].ResumeID)
	assert.NotEmpty(t, res.RequestID)
	require.NotNil(t, res.MissionSpec)
	assert.Contains(t, res.MissionSpec.MustHave, "python")
}

func TestPipeline_StageOrder(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{MinStrongCandidates: 1})

	events := collect(t, p.Run(context.Background(), "python, django"))

	var stages []string
	for _, ev := range events {
		if ev.Type == EventStageComplete {
			stages = append(stages, ev.Stage)
		}
	}
	assert.Equal(t, []string{
		StageJDUnderstanding, StageRetrieval, StageFusion,
		StageEvidence, StageRanking, StageAssembly,
	}, stages)
}

func TestPipeline_StageCompleteFollowsToolEvents(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{MinStrongCandidates: 1})

	events := collect(t, p.Run(context.Background(), "python, django"))

	// Every tool_call must be answered by a tool_result before the next
	// stage boundary.
	pendingTool := ""
	for _, ev := range events {
		switch ev.Type {
		case EventToolCall:
			assert.Empty(t, pendingTool, "tool_call while another call is open")
			pendingTool = ev.Tool
		case EventToolResult:
			assert.Equal(t, pendingTool, ev.Tool)
			pendingTool = ""
		case EventStageComplete:
			assert.Empty(t, pendingTool, "stage_complete before tool_result")
		}
	}
}

func TestPipeline_MissionSpecBeforeFirstStageComplete(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{MinStrongCandidates: 1})

	events := collect(t, p.Run(context.Background(), "python"))
	types := eventTypes(events)

	missionIdx, stageIdx := -1, -1
	for i, typ := range types {
		if typ == EventMissionSpec && missionIdx < 0 {
			missionIdx = i
		}
		if typ == EventStageComplete && stageIdx < 0 {
			stageIdx = i
		}
	}
	require.GreaterOrEqual(t, missionIdx, 0)
	require.GreaterOrEqual(t, stageIdx, 0)
	assert.Less(t, missionIdx, stageIdx)
}

func TestPipeline_WeakFallback(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{MinStrongCandidates: 1})

	// Nothing in the ledger matches, so gating returns no candidates and
	// the ungated fallback kicks in.
	events := collect(t, p.Run(context.Background(), "cobol mainframe"))
	types := eventTypes(events)
	assert.Equal(t, EventDone, types[len(types)-1])

	res := findResult(t, events)
	assert.Equal(t, MatchWeak, res.MatchQuality)
	assert.NotEmpty(t, res.Results, "ungated retrieval still surfaces candidates")
	for _, c := range res.Results {
		assert.Zero(t, c.MatchedCount)
	}
}

func TestPipeline_NoCandidatesAtAll(t *testing.T) {
	p := newTestPipeline(t, nil, config.AgentConfig{})

	events := collect(t, p.Run(context.Background(), "anything at all"))
	types := eventTypes(events)
	assert.Equal(t, EventDone, types[len(types)-1])

	res := findResult(t, events)
	assert.Equal(t, MatchNone, res.MatchQuality)
	assert.Empty(t, res.Results)
}

func TestPipeline_EmptyQueryErrors(t *testing.T) {
	p := newTestPipeline(t, nil, config.AgentConfig{})

	events := collect(t, p.Run(context.Background(), "   "))
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type, "error is terminal, no done after it")
	assert.NotEmpty(t, last.Message)
}

func TestPipeline_StageTimingsRecorded(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{MinStrongCandidates: 1})

	events := collect(t, p.Run(context.Background(), "python"))
	res := findResult(t, events)

	for _, stage := range []string{
		StageJDUnderstanding, StageRetrieval, StageFusion,
		StageEvidence, StageRanking, StageAssembly,
	} {
		_, ok := res.StageTimings[stage]
		assert.True(t, ok, "missing timing for %s", stage)
	}
}

func TestPipeline_MaxResultsCap(t *testing.T) {
	var seeds []seedResume
	for i := 0; i < 6; i++ {
		seeds = append(seeds, seedResume{
			resumeID: fmt.Sprintf("r%d", i),
			skills:   []string{"python"},
			chunks:   []string{"Python services."},
		})
	}
	p := newTestPipeline(t, seeds, config.AgentConfig{MinStrongCandidates: 1, MaxResults: 2})

	events := collect(t, p.Run(context.Background(), "python"))
	res := findResult(t, events)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, 6, res.TotalCandidatesFound)
}

func TestPipeline_NoRerankerWired(t *testing.T) {
	// newTestPipeline builds its engine without a reranker; the run must
	// complete with the ranking stage skipping the rerank tool call.
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{MinStrongCandidates: 1})

	events := collect(t, p.Run(context.Background(), "python, django"))
	types := eventTypes(events)
	require.NotEmpty(t, types)
	assert.Equal(t, EventDone, types[len(types)-1])

	for _, ev := range events {
		assert.NotEqual(t, "cross_encoder_rerank", ev.Tool)
	}
	res := findResult(t, events)
	assert.Equal(t, MatchStrong, res.MatchQuality)
}

type stalledExtractor struct{}

func (stalledExtractor) Extract(ctx context.Context, query string) (*MissionSpec, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestPipeline_QueryTimeoutYieldsError(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{QueryTimeout: 25 * time.Millisecond})
	p.extractor = stalledExtractor{}

	events := collect(t, p.Run(context.Background(), "python"))
	require.NotEmpty(t, events, "a timed-out run still reports its failure")
	last := events[len(events)-1]
	assert.Equal(t, EventError, last.Type)
	assert.Contains(t, last.Message, "deadline")
}

func TestPipeline_CancelledContext(t *testing.T) {
	p := newTestPipeline(t, strongSeeds(), config.AgentConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events := collect(t, p.Run(ctx, "python"))
	for _, ev := range events {
		assert.NotEqual(t, EventDone, ev.Type, "no done after cancellation")
	}
}

func TestAgenticThreshold(t *testing.T) {
	assert.Equal(t, 1, agenticThreshold(0))
	assert.Equal(t, 1, agenticThreshold(1))
	assert.Equal(t, 1, agenticThreshold(2))
	assert.Equal(t, 2, agenticThreshold(3))
	assert.Equal(t, 3, agenticThreshold(5))
}
