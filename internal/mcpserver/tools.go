package mcpserver

import (
	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/internal/store"
)

// SearchCandidatesInput defines the input schema for the
// search_candidates tool.
type SearchCandidatesInput struct {
	Skills       []string `json:"skills" jsonschema:"required skills to search for, e.g. [\"python\",\"kafka\"]"`
	Mode         string   `json:"mode,omitempty" jsonschema:"matching mode: match_all (default) or match_at_least"`
	MinMatch     int      `json:"min_match,omitempty" jsonschema:"minimum skills to match when mode is match_at_least"`
	MinYOE       int      `json:"min_yoe,omitempty" jsonschema:"minimum total years of experience"`
	Location     string   `json:"location,omitempty" jsonschema:"filter by country, case-insensitive"`
	Limit        int      `json:"limit,omitempty" jsonschema:"maximum number of candidates, default 10"`
	EnableRerank bool     `json:"enable_rerank,omitempty" jsonschema:"apply cross-encoder reranking to the shortlist"`
}

// SearchCandidatesOutput defines the output schema for the
// search_candidates tool.
type SearchCandidatesOutput struct {
	Results         []search.Candidate `json:"results" jsonschema:"ranked candidates with scores and evidence"`
	TotalCandidates int                `json:"total_candidates" jsonschema:"how many candidates passed the skill gate"`
	LatencyMs       int64              `json:"latency_ms" jsonschema:"query latency in milliseconds"`
}

// GetResumeInput defines the input schema for the get_resume tool.
type GetResumeInput struct {
	ResumeID string `json:"resume_id" jsonschema:"the candidate's resume identifier"`
}

// GetResumeOutput defines the output schema for the get_resume tool.
type GetResumeOutput struct {
	Resume   *store.Resume      `json:"resume" jsonschema:"redacted resume profile"`
	Headline string             `json:"headline" jsonschema:"latest title and company"`
	Skills   []store.SkillEntry `json:"skills" jsonschema:"skill ledger entries with confidence"`
}

// ListSkillsInput defines the input schema for the list_skills tool.
type ListSkillsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of skills, default 100"`
}

// ListSkillsOutput defines the output schema for the list_skills tool.
type ListSkillsOutput struct {
	Skills []store.SkillCount `json:"skills" jsonschema:"canonical skills with resume counts, most common first"`
}

// ToolInfo describes a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}
