package agent

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/talentsift/talentsift/internal/skill"
)

// MissionSpec is the structured intent extracted from a free-text
// recruiter query or job description.
type MissionSpec struct {
	MustHave            []string `json:"mustHave"`
	NiceToHave          []string `json:"niceToHave"`
	NegativeConstraints []string `json:"negativeConstraints"`
	MinYears            *int     `json:"minYears"`
	Location            *string  `json:"location"`
	CoreDomain          *string  `json:"coreDomain"`
	Clarifications      []string `json:"clarifications"`
	RawQuery            string   `json:"rawQuery"`
}

// normalize canonicalizes the skill lists in place and backfills nil
// slices so the spec serializes with empty arrays rather than null.
func (m *MissionSpec) normalize() {
	m.MustHave = skill.NormalizeList(m.MustHave)
	m.NiceToHave = skill.NormalizeList(m.NiceToHave)
	if m.MustHave == nil {
		m.MustHave = []string{}
	}
	if m.NiceToHave == nil {
		m.NiceToHave = []string{}
	}
	if m.NegativeConstraints == nil {
		m.NegativeConstraints = []string{}
	}
	if m.Clarifications == nil {
		m.Clarifications = []string{}
	}
}

// missionWire is the shape the LLM is asked to return. minYears is
// decoded separately because models occasionally emit it as a string
// or a float; only integral values are accepted.
type missionWire struct {
	MustHave            []string        `json:"must_have"`
	NiceToHave          []string        `json:"nice_to_have"`
	NegativeConstraints []string        `json:"negative_constraints"`
	MinYears            json.RawMessage `json:"min_years"`
	Location            *string         `json:"location"`
	CoreDomain          *string         `json:"core_domain"`
	Clarifications      []string        `json:"clarifications"`
}

// ParseMissionJSON decodes an LLM response body into a MissionSpec.
// Missing fields default to empty; a non-integer min_years is dropped.
func ParseMissionJSON(data []byte, rawQuery string) (*MissionSpec, error) {
	var wire missionWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	spec := &MissionSpec{
		MustHave:            wire.MustHave,
		NiceToHave:          wire.NiceToHave,
		NegativeConstraints: wire.NegativeConstraints,
		Location:            wire.Location,
		CoreDomain:          wire.CoreDomain,
		Clarifications:      wire.Clarifications,
		RawQuery:            rawQuery,
	}
	if years, ok := parseIntOnly(wire.MinYears); ok {
		spec.MinYears = &years
	}
	spec.normalize()
	return spec, nil
}

func parseIntOnly(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil || v < 0 {
		return 0, false
	}
	return int(v), true
}

var (
	yearsPattern    = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?|yoe)`)
	tokenSplit      = regexp.MustCompile(`[,;.\n]+`)
	fillerWords     = regexp.MustCompile(`(?i)\b(with|and|or|experience|in|of|the|a|an|for|to|is|are|we|need|looking|senior|junior|mid|level|developer|engineer|specialist)\b`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	heuristicAdvice = "Query was parsed using keyword extraction. Provide a more detailed job description for better results."
)

// HeuristicMission builds a MissionSpec without an LLM: every query
// token becomes a must-have skill, and a years requirement is lifted
// by pattern match. Used when intent extraction is unavailable or its
// output cannot be parsed.
func HeuristicMission(query string) *MissionSpec {
	spec := &MissionSpec{
		RawQuery:       query,
		Clarifications: []string{heuristicAdvice},
	}

	if m := yearsPattern.FindStringSubmatch(query); m != nil {
		if years, ok := parseIntOnly(json.RawMessage(m[1])); ok {
			spec.MinYears = &years
		}
	}

	var skills []string
	for _, token := range tokenSplit.Split(query, -1) {
		cleaned := fillerWords.ReplaceAllString(strings.ToLower(strings.TrimSpace(token)), " ")
		cleaned = strings.TrimSpace(whitespaceRuns.ReplaceAllString(cleaned, " "))
		if len(cleaned) > 1 && len(cleaned) < 50 {
			skills = append(skills, cleaned)
		}
	}
	spec.MustHave = skills
	spec.normalize()
	return spec
}
