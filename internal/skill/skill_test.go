package skill

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/talentsift/internal/store"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"alias ml", "ML", "machine learning"},
		{"alias k8s", "k8s", "kubernetes"},
		{"alias react.js", "React.js", "react"},
		{"alias node", "Node", "nodejs"},
		{"alias postgres", "Postgres", "postgresql"},
		{"trailing punctuation", "Python,", "python"},
		{"whitespace", "  Go  ", "go"},
		{"passthrough", "terraform", "terraform"},
		{"empty", "", ""},
		{"only punctuation", ";", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, raw := range []string{"ML", "node.js", "Postgres", "C++", "html5", "random skill"} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), "Normalize must be idempotent for %q", raw)
	}
}

func TestNormalizeList_DedupesKeepingFirstSeen(t *testing.T) {
	got := NormalizeList([]string{"ML", "machine learning", "Go", "golang", "", "Python"})
	assert.Equal(t, []string{"machine learning", "go", "python"}, got)
}

func TestSkillsInText(t *testing.T) {
	got := SkillsInText("Built ML pipelines in Python using Kafka and deployed on Kubernetes.")
	assert.Contains(t, got, "python")
	assert.Contains(t, got, "kafka")
	assert.Contains(t, got, "kubernetes")
	assert.NotContains(t, got, "react")
	assert.IsIncreasing(t, got)
}

func TestSkillsInText_WordBoundaries(t *testing.T) {
	// "Javan" must not match "Java".
	got := SkillsInText("Expert in Javanese culture")
	assert.NotContains(t, got, "java")
}

func TestExtractLedger_ConfidenceTiers(t *testing.T) {
	r := &store.Resume{
		ResumeID: "r1",
		Summary:  "Engineer working with Python daily.",
		Experience: []store.Experience{
			{
				Dates: store.DateRange{Start: "2020-01", End: "2023-06"},
				TechEnv: store.TechEnv{
					Technologies: []string{"Go", "Postgres"},
				},
				Responsibilities: []string{"Maintained Kafka consumers"},
			},
		},
		Projects: []store.Project{
			{Technologies: []string{"React"}, Description: "Frontend with GraphQL"},
		},
	}

	entries := ExtractLedger(r)
	byskill := make(map[string]store.SkillEntry)
	for _, e := range entries {
		_, dup := byskill[e.SkillCanonical]
		require.False(t, dup, "ledger must have at most one entry per canonical skill")
		byskill[e.SkillCanonical] = e
	}

	require.Contains(t, byskill, "go")
	assert.Equal(t, 1.0, byskill["go"].Confidence)
	assert.Equal(t, "2023-06", byskill["go"].LastSeen)

	require.Contains(t, byskill, "postgresql")
	assert.Equal(t, 1.0, byskill["postgresql"].Confidence)

	require.Contains(t, byskill, "react")
	assert.Equal(t, 0.9, byskill["react"].Confidence)

	require.Contains(t, byskill, "kafka")
	assert.Equal(t, 0.6, byskill["kafka"].Confidence)

	require.Contains(t, byskill, "graphql")
	assert.Equal(t, 0.6, byskill["graphql"].Confidence)

	require.Contains(t, byskill, "python")
	assert.Equal(t, 0.6, byskill["python"].Confidence)
	assert.Equal(t, []string{"personal_info.summary"}, byskill["python"].EvidenceSources)
}

func TestExtractLedger_HigherConfidenceSupersedes(t *testing.T) {
	r := &store.Resume{
		ResumeID: "r1",
		Summary:  "Python enthusiast",
		Experience: []store.Experience{
			{TechEnv: store.TechEnv{Technologies: []string{"Python"}}},
		},
	}

	entries := ExtractLedger(r)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "python", e.SkillCanonical)
	assert.Equal(t, 1.0, e.Confidence, "structured source must win over narrative")
	assert.Equal(t, 2, e.EvidenceCount)
	assert.Equal(t, []string{"personal_info.summary", "tech_env.technologies"}, e.EvidenceSources)
}

func TestExtractLedger_SkillsSectionAndAliases(t *testing.T) {
	r := &store.Resume{
		ResumeID: "r1",
		Skills: store.SkillsSection{
			Technical: map[string][]store.SkillItem{
				"languages": {{Name: "JS"}, {Name: "TS", Level: "expert"}},
				"cloud":     {{Name: "k8s"}},
			},
		},
	}

	entries := ExtractLedger(r)
	got := make(map[string]float64)
	for _, e := range entries {
		got[e.SkillCanonical] = e.Confidence
	}
	assert.Equal(t, map[string]float64{
		"javascript": 1.0,
		"typescript": 1.0,
		"kubernetes": 1.0,
	}, got)
}

func TestExtractLedger_UniquePerSkill(t *testing.T) {
	r := &store.Resume{
		ResumeID: "r1",
		Experience: []store.Experience{
			{TechEnv: store.TechEnv{Technologies: []string{"Go", "golang", "GO"}}},
		},
	}
	entries := ExtractLedger(r)
	require.Len(t, entries, 1)
	assert.Equal(t, "go", entries[0].SkillCanonical)
	assert.Equal(t, 3, entries[0].EvidenceCount)
}

func TestExtractLedger_DropsSingleCharSkills(t *testing.T) {
	r := &store.Resume{
		ResumeID: "r1",
		Experience: []store.Experience{
			{TechEnv: store.TechEnv{Technologies: []string{"R", "Go"}}},
		},
	}
	entries := ExtractLedger(r)
	require.Len(t, entries, 1)
	assert.Equal(t, "go", entries[0].SkillCanonical)
}
