// Package store provides persistent storage for resume cores, the skill
// ledger, and text chunks. The primary implementation is SQLite
// (modernc.org/sqlite, pure Go); an optional Bleve index can back lexical
// chunk retrieval.
package store

import (
	"encoding/json"
	"time"
)

// SectionType values for chunks.
const (
	SectionSummary    = "summary"
	SectionExperience = "experience"
	SectionProject    = "project"
	SectionEducation  = "education"
	SectionSkills     = "skills"
)

// Resume is the PII-free core profile for a candidate.
// It is immutable between ingestions.
type Resume struct {
	ResumeID        string        `json:"resumeId"`
	Summary         string        `json:"summary,omitempty"`
	LocationCountry string        `json:"locationCountry,omitempty"`
	LocationCity    string        `json:"locationCity,omitempty"`
	TotalYOE        int           `json:"totalYOE"`
	Experience      []Experience  `json:"experience,omitempty"`
	Projects        []Project     `json:"projects,omitempty"`
	Education       []Education   `json:"education,omitempty"`
	Skills          SkillsSection `json:"skills,omitempty"`
	IngestedAt      time.Time     `json:"ingestedAt,omitempty"`
}

// Headline builds a display headline from the most recent experience entry.
func (r *Resume) Headline() string {
	if len(r.Experience) == 0 {
		return "No title available"
	}
	latest := r.Experience[0]
	switch {
	case latest.Title != "" && latest.Company != "":
		return latest.Title + " at " + latest.Company
	case latest.Title != "":
		return latest.Title
	case latest.Company != "":
		return latest.Company
	default:
		return "No title available"
	}
}

// Experience is a single employment entry.
type Experience struct {
	Title            string       `json:"title,omitempty"`
	Company          string       `json:"company,omitempty"`
	EmploymentType   string       `json:"employment_type,omitempty"`
	Level            string       `json:"level,omitempty"`
	Dates            DateRange    `json:"dates,omitempty"`
	Responsibilities []string     `json:"responsibilities,omitempty"`
	TechEnv          TechEnv      `json:"technical_environment,omitempty"`
}

// DateRange covers employment and education periods.
type DateRange struct {
	Start              string `json:"start,omitempty"`
	End                string `json:"end,omitempty"`
	Duration           string `json:"duration,omitempty"`
	ExpectedGraduation string `json:"expected_graduation,omitempty"`
}

// TechEnv lists the technical environment of an experience entry.
type TechEnv struct {
	Technologies  []string `json:"technologies,omitempty"`
	Tools         []string `json:"tools,omitempty"`
	Methodologies []string `json:"methodologies,omitempty"`
}

// Project is a single project entry.
type Project struct {
	Name         string   `json:"name,omitempty"`
	Role         string   `json:"role,omitempty"`
	Description  string   `json:"description,omitempty"`
	Impact       string   `json:"impact,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// Education is a single education entry.
type Education struct {
	Degree       Degree       `json:"degree,omitempty"`
	Institution  Institution  `json:"institution,omitempty"`
	Dates        DateRange    `json:"dates,omitempty"`
	Achievements Achievements `json:"achievements,omitempty"`
}

// Degree describes the degree earned.
type Degree struct {
	Level string `json:"level,omitempty"`
	Field string `json:"field,omitempty"`
	Major string `json:"major,omitempty"`
}

// Institution identifies the school.
type Institution struct {
	Name string `json:"name,omitempty"`
}

// Achievements holds education achievements.
type Achievements struct {
	RelevantCoursework []string    `json:"relevant_coursework,omitempty"`
	Honors             string      `json:"honors,omitempty"`
	GPA                json.Number `json:"gpa,omitempty"`
}

// SkillsSection holds the structured skills section of a resume.
// Technical maps category name to a list of skill items.
type SkillsSection struct {
	Technical map[string][]SkillItem `json:"technical,omitempty"`
}

// SkillItem is one entry in a skills category. Source documents encode
// these either as plain strings or as {name, level} objects.
type SkillItem struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// UnmarshalJSON accepts both the string and object encodings.
func (s *SkillItem) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Name)
	}
	type plain SkillItem
	return json.Unmarshal(data, (*plain)(s))
}

// PersonalInfo is PII extracted at ingest time. It is stored in the
// separate resumes_pii table and never read by retrieval.
type PersonalInfo struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// SkillEntry is one row of the skill ledger. At most one entry exists per
// (resumeId, skillCanonical).
type SkillEntry struct {
	ResumeID        string   `json:"resumeId"`
	SkillCanonical  string   `json:"skillCanonical"`
	Confidence      float64  `json:"confidence"`
	EvidenceCount   int      `json:"evidenceCount"`
	EvidenceSources []string `json:"evidenceSources"`
	LastSeen        string   `json:"lastSeen,omitempty"`
}

// Chunk is one searchable text chunk of a resume, with its embedding.
type Chunk struct {
	ChunkID        string    `json:"chunkId"`
	ResumeID       string    `json:"resumeId"`
	SectionType    string    `json:"sectionType"`
	SectionOrdinal int       `json:"sectionOrdinal"`
	ChunkText      string    `json:"chunkText"`
	SkillsInChunk  []string  `json:"skillsInChunk,omitempty"`
	StartDate      string    `json:"startDate,omitempty"`
	EndDate        string    `json:"endDate,omitempty"`
	Embedding      []float32 `json:"-"`
}

// GatedCandidate is a resume that passed the skill gate, annotated with
// its matched skills.
type GatedCandidate struct {
	ResumeID      string
	MatchedSkills []string
	MatchedCount  int
	AvgConfidence float64
}

// TermHit is a chunk matched by lexical term search, with per-term
// occurrence counts.
type TermHit struct {
	Chunk
	HitCounts map[string]int
	TotalHits int
}

// SkillCount is a canonical skill with the number of resumes holding it.
type SkillCount struct {
	Skill        string `json:"skill"`
	ResumeCount  int    `json:"resumeCount"`
}
