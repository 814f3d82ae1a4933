package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentsift/talentsift/internal/store"
)

func testResume() *store.Resume {
	return &store.Resume{
		ResumeID: "r1",
		Summary:  "Backend engineer focused on distributed systems.",
		Experience: []store.Experience{
			{
				Title:          "Senior Engineer",
				Company:        "Acme",
				EmploymentType: "full-time",
				Level:          "senior",
				Dates:          store.DateRange{Start: "2020-01", End: "2023-06", Duration: "3.5 years"},
				Responsibilities: []string{
					"Designed Kafka-based event pipelines",
					"Led a team of four",
				},
				TechEnv: store.TechEnv{
					Technologies:  []string{"Go", "Kafka"},
					Tools:         []string{"Docker"},
					Methodologies: []string{"Scrum"},
				},
			},
		},
		Projects: []store.Project{
			{
				Name:         "Billing rewrite",
				Role:         "Lead",
				Description:  "Rewrote the billing system in Go.",
				Impact:       "Cut invoice latency by 70%",
				Technologies: []string{"Go", "PostgreSQL"},
			},
		},
		Education: []store.Education{
			{
				Degree:      store.Degree{Level: "Bachelor", Field: "Computer Science"},
				Institution: store.Institution{Name: "NUS"},
				Dates:       store.DateRange{Start: "2012", End: "2016"},
				Achievements: store.Achievements{
					RelevantCoursework: []string{"Algorithms", "Databases"},
					Honors:             "First Class",
					GPA:                "3.9",
				},
			},
		},
		Skills: store.SkillsSection{
			Technical: map[string][]store.SkillItem{
				"programming_languages": {{Name: "Go", Level: "expert"}, {Name: "Python"}},
				"databases":             {{Name: "PostgreSQL"}},
			},
		},
	}
}

func noRedact() *Redactor {
	return NewRedactor(&RawResume{})
}

func TestGenerateChunks_SectionLayout(t *testing.T) {
	chunks := GenerateChunks(testResume(), noRedact())
	require.Len(t, chunks, 5)

	bySection := make(map[string]store.Chunk)
	for _, c := range chunks {
		bySection[c.SectionType] = c
	}

	assert.Contains(t, bySection[store.SectionSummary].ChunkText, "distributed systems")

	exp := bySection[store.SectionExperience]
	assert.Contains(t, exp.ChunkText, "Senior Engineer at Acme")
	assert.Contains(t, exp.ChunkText, "(senior, full-time)")
	assert.Contains(t, exp.ChunkText, "Duration: 3.5 years")
	assert.Contains(t, exp.ChunkText, "- Designed Kafka-based event pipelines")
	assert.Contains(t, exp.ChunkText, "Technical Environment: Go, Kafka, Docker, Scrum")
	assert.Equal(t, "2020-01", exp.StartDate)
	assert.Equal(t, "2023-06", exp.EndDate)

	proj := bySection[store.SectionProject]
	assert.Contains(t, proj.ChunkText, "Project: Billing rewrite")
	assert.Contains(t, proj.ChunkText, "Role: Lead")
	assert.Contains(t, proj.ChunkText, "Impact: Cut invoice latency by 70%")
	assert.Contains(t, proj.ChunkText, "Technologies: Go, PostgreSQL")

	edu := bySection[store.SectionEducation]
	assert.Contains(t, edu.ChunkText, "Bachelor's degree in Computer Science")
	assert.Contains(t, edu.ChunkText, "Institution: NUS")
	assert.Contains(t, edu.ChunkText, "Period: 2012 - 2016")
	assert.Contains(t, edu.ChunkText, "Honors: First Class")
	assert.Contains(t, edu.ChunkText, "GPA: 3.9")

	skills := bySection[store.SectionSkills]
	assert.Contains(t, skills.ChunkText, "Technical Skills:")
	assert.Contains(t, skills.ChunkText, "Programming Languages: Go (expert), Python")
	assert.Contains(t, skills.ChunkText, "Databases: PostgreSQL")
}

func TestGenerateChunks_DeterministicIDs(t *testing.T) {
	a := GenerateChunks(testResume(), noRedact())
	b := GenerateChunks(testResume(), noRedact())
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ChunkID, b[i].ChunkID)
		assert.Equal(t, a[i].ChunkText, b[i].ChunkText)
	}
}

func TestGenerateChunks_SkillsInChunk(t *testing.T) {
	chunks := GenerateChunks(testResume(), noRedact())
	var exp store.Chunk
	for _, c := range chunks {
		if c.SectionType == store.SectionExperience {
			exp = c
		}
	}
	assert.Contains(t, exp.SkillsInChunk, "go")
	assert.Contains(t, exp.SkillsInChunk, "kafka")
	assert.Contains(t, exp.SkillsInChunk, "docker")
}

func TestGenerateChunks_EmptySections(t *testing.T) {
	chunks := GenerateChunks(&store.Resume{ResumeID: "r2"}, noRedact())
	assert.Empty(t, chunks)
}

func TestGenerateChunks_ExpectedGraduationPreferred(t *testing.T) {
	core := &store.Resume{
		ResumeID: "r3",
		Education: []store.Education{{
			Degree: store.Degree{Level: "Master", Field: "AI"},
			Dates:  store.DateRange{Start: "2024", End: "2025", ExpectedGraduation: "2026"},
		}},
	}
	chunks := GenerateChunks(core, noRedact())
	require.Len(t, chunks, 1)
	assert.Equal(t, "2026", chunks[0].EndDate)
	assert.Contains(t, chunks[0].ChunkText, "Period: 2024 - 2026")
}

func TestGenerateChunks_RedactsPII(t *testing.T) {
	raw := &RawResume{PersonalInfo: RawPersonalInfo{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	}}
	core := &store.Resume{
		ResumeID: "r4",
		Experience: []store.Experience{{
			Title:            "Engineer",
			Company:          "Acme",
			Responsibilities: []string{"Contact Jane Doe at jane@example.com for handover"},
		}},
	}
	chunks := GenerateChunks(core, NewRedactor(raw))
	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].ChunkText, "Jane Doe")
	assert.NotContains(t, chunks[0].ChunkText, "jane@example.com")
	assert.Contains(t, chunks[0].ChunkText, redactedMark)
}
