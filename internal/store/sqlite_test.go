package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testResume(id string, skills []SkillEntry, chunks []Chunk) (*Resume, *PersonalInfo, []SkillEntry, []Chunk) {
	core := &Resume{
		ResumeID:        id,
		Summary:         "Backend engineer",
		LocationCountry: "Germany",
		LocationCity:    "Berlin",
		TotalYOE:        5,
		Experience: []Experience{
			{Title: "Senior Engineer", Company: "Acme"},
		},
		IngestedAt: time.Now(),
	}
	pii := &PersonalInfo{Name: "redacted"}
	return core, pii, skills, chunks
}

func seedResume(t *testing.T, s *SQLiteStore, id string, skills []SkillEntry, chunks []Chunk) {
	t.Helper()
	core, pii, sk, ch := testResume(id, skills, chunks)
	require.NoError(t, s.UpsertResume(context.Background(), core, pii, sk, ch))
}

func TestUpsertAndGetResume(t *testing.T) {
	s := newTestStore(t)
	seedResume(t, s, "r1", nil, nil)

	r, err := s.GetResume(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ResumeID)
	assert.Equal(t, 5, r.TotalYOE)
	assert.Equal(t, "Senior Engineer at Acme", r.Headline())
}

func TestGetResume_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetResume(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, sifterr.ErrCodeResumeNotFound, sifterr.CodeOf(err))
}

func TestGateBySkills_SoundnessAndOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedResume(t, s, "r1", []SkillEntry{
		{ResumeID: "r1", SkillCanonical: "go", Confidence: 1.0, EvidenceCount: 3},
		{ResumeID: "r1", SkillCanonical: "python", Confidence: 0.9, EvidenceCount: 1},
	}, nil)
	seedResume(t, s, "r2", []SkillEntry{
		{ResumeID: "r2", SkillCanonical: "go", Confidence: 0.6, EvidenceCount: 1},
	}, nil)
	seedResume(t, s, "r3", []SkillEntry{
		{ResumeID: "r3", SkillCanonical: "java", Confidence: 1.0, EvidenceCount: 2},
	}, nil)

	got, err := s.GateBySkills(ctx, []string{"go", "python"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// r1 matches 2 skills, r2 one; r3 must not appear.
	assert.Equal(t, "r1", got[0].ResumeID)
	assert.Equal(t, 2, got[0].MatchedCount)
	assert.ElementsMatch(t, []string{"go", "python"}, got[0].MatchedSkills)
	assert.InDelta(t, 0.95, got[0].AvgConfidence, 1e-9)
	assert.Equal(t, "r2", got[1].ResumeID)

	// Threshold 2 keeps only r1.
	got, err = s.GateBySkills(ctx, []string{"go", "python"}, 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ResumeID)
}

func TestGateBySkills_TiesBreakByResumeID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"b", "a", "c"} {
		seedResume(t, s, id, []SkillEntry{
			{ResumeID: id, SkillCanonical: "go", Confidence: 0.9, EvidenceCount: 1},
		}, nil)
	}

	got, err := s.GateBySkills(ctx, []string{"go"}, 1, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"},
		[]string{got[0].ResumeID, got[1].ResumeID, got[2].ResumeID})
}

func TestGateBySkills_Limit(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		seedResume(t, s, id, []SkillEntry{
			{ResumeID: id, SkillCanonical: "go", Confidence: 0.9, EvidenceCount: 1},
		}, nil)
	}

	got, err := s.GateBySkills(context.Background(), []string{"go"}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestChunksFor_DeterministicOrderAndEmbeddings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedResume(t, s, "r1", nil, []Chunk{
		{ChunkID: "c2", ResumeID: "r1", SectionType: SectionExperience, SectionOrdinal: 1, ChunkText: "second job", Embedding: []float32{0.1, 0.2}},
		{ChunkID: "c1", ResumeID: "r1", SectionType: SectionExperience, SectionOrdinal: 0, ChunkText: "first job", Embedding: []float32{0.3, 0.4}},
		{ChunkID: "c0", ResumeID: "r1", SectionType: SectionSummary, SectionOrdinal: 0, ChunkText: "summary text", SkillsInChunk: []string{"go"}},
	})

	chunks, err := s.ChunksFor(ctx, []string{"r1"})
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	// experience < summary lexicographically
	assert.Equal(t, "c1", chunks[0].ChunkID)
	assert.Equal(t, "c2", chunks[1].ChunkID)
	assert.Equal(t, "c0", chunks[2].ChunkID)

	assert.Equal(t, []float32{0.3, 0.4}, chunks[0].Embedding)
	assert.Equal(t, []string{"go"}, chunks[2].SkillsInChunk)
}

func TestChunksMatchingTerms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedResume(t, s, "r1", nil, []Chunk{
		{ChunkID: "c1", ResumeID: "r1", SectionType: SectionSummary, SectionOrdinal: 0,
			ChunkText: "Built Kafka pipelines. Kafka tuning and Python tooling."},
		{ChunkID: "c2", ResumeID: "r1", SectionType: SectionProject, SectionOrdinal: 0,
			ChunkText: "Frontend work in React."},
	})

	hits, err := s.ChunksMatchingTerms(ctx, []string{"r1"}, []string{"kafka", "python"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)
	assert.Equal(t, 2, hits[0].HitCounts["kafka"])
	assert.Equal(t, 1, hits[0].HitCounts["python"])
	assert.Equal(t, 3, hits[0].TotalHits)
}

func TestDeleteResume_Atomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedResume(t, s, "r1",
		[]SkillEntry{{ResumeID: "r1", SkillCanonical: "go", Confidence: 1.0, EvidenceCount: 1}},
		[]Chunk{{ChunkID: "c1", ResumeID: "r1", SectionType: SectionSummary, SectionOrdinal: 0, ChunkText: "x"}},
	)

	require.NoError(t, s.DeleteResume(ctx, "r1"))

	_, err := s.GetResume(ctx, "r1")
	assert.Equal(t, sifterr.ErrCodeResumeNotFound, sifterr.CodeOf(err))

	gated, err := s.GateBySkills(ctx, []string{"go"}, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, gated)

	chunks, err := s.ChunksFor(ctx, []string{"r1"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDeleteResume_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteResume(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, sifterr.ErrCodeResumeNotFound, sifterr.CodeOf(err))
}

func TestUpsertResume_ReplacesPrior(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedResume(t, s, "r1",
		[]SkillEntry{{ResumeID: "r1", SkillCanonical: "java", Confidence: 1.0, EvidenceCount: 1}},
		[]Chunk{{ChunkID: "old", ResumeID: "r1", SectionType: SectionSummary, SectionOrdinal: 0, ChunkText: "old"}},
	)
	seedResume(t, s, "r1",
		[]SkillEntry{{ResumeID: "r1", SkillCanonical: "go", Confidence: 1.0, EvidenceCount: 1}},
		[]Chunk{{ChunkID: "new", ResumeID: "r1", SectionType: SectionSummary, SectionOrdinal: 0, ChunkText: "new"}},
	)

	gated, err := s.GateBySkills(ctx, []string{"java"}, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, gated, "old ledger rows must be gone")

	chunks, err := s.ChunksFor(ctx, []string{"r1"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new", chunks[0].ChunkID)
}

func TestDistinctSkills(t *testing.T) {
	s := newTestStore(t)

	seedResume(t, s, "r1", []SkillEntry{
		{ResumeID: "r1", SkillCanonical: "go", Confidence: 1, EvidenceCount: 1},
		{ResumeID: "r1", SkillCanonical: "python", Confidence: 1, EvidenceCount: 1},
	}, nil)
	seedResume(t, s, "r2", []SkillEntry{
		{ResumeID: "r2", SkillCanonical: "go", Confidence: 1, EvidenceCount: 1},
	}, nil)

	skills, err := s.DistinctSkills(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, skills, 2)
	assert.Equal(t, SkillCount{Skill: "go", ResumeCount: 2}, skills[0])
	assert.Equal(t, SkillCount{Skill: "python", ResumeCount: 1}, skills[1])
}

func TestEmbeddingRoundTrip(t *testing.T) {
	in := []float32{0.5, -1.25, 3.75}
	out := decodeEmbedding(encodeEmbedding(in))
	assert.Equal(t, in, out)

	assert.Nil(t, encodeEmbedding(nil))
	assert.Nil(t, decodeEmbedding(nil))
	assert.Nil(t, decodeEmbedding([]byte{1, 2, 3})) // not a multiple of 4
}

func TestSkillItem_UnmarshalBothForms(t *testing.T) {
	var sec SkillsSection
	data := []byte(`{"technical":{"languages":["Go",{"name":"Python","level":"expert"}]}}`)
	require.NoError(t, json.Unmarshal(data, &sec))

	items := sec.Technical["languages"]
	require.Len(t, items, 2)
	assert.Equal(t, "Go", items[0].Name)
	assert.Equal(t, "Python", items[1].Name)
	assert.Equal(t, "expert", items[1].Level)
}
