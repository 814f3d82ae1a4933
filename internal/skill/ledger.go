package skill

import (
	"math"
	"sort"

	"github.com/talentsift/talentsift/internal/store"
)

// Source confidence tiers. Higher-confidence observations of the same
// skill supersede lower ones.
const (
	ConfidenceStructured = 1.0 // technical_environment / skills section
	ConfidenceProject    = 0.9 // project tech stacks
	ConfidenceNarrative  = 0.6 // responsibilities / descriptions / summary
)

// ExtractLedger builds skill ledger entries from a resume core.
// Each canonical skill yields exactly one entry carrying its evidence
// count, sorted evidence sources, max confidence, and most recent date.
func ExtractLedger(r *store.Resume) []store.SkillEntry {
	type acc struct {
		sources  map[string]struct{}
		count    int
		maxConf  float64
		lastDate string
	}
	skillMap := make(map[string]*acc)
	var order []string

	add := func(raw, sourceType string, confidence float64, date string) {
		canonical := Normalize(raw)
		if len(canonical) < 2 {
			return
		}
		a, ok := skillMap[canonical]
		if !ok {
			a = &acc{sources: make(map[string]struct{})}
			skillMap[canonical] = a
			order = append(order, canonical)
		}
		a.sources[sourceType] = struct{}{}
		a.count++
		if confidence > a.maxConf {
			a.maxConf = confidence
		}
		if date != "" && date > a.lastDate {
			a.lastDate = date
		}
	}

	// Experience: structured technical environment plus narrative
	// responsibilities.
	for _, exp := range r.Experience {
		endDate := exp.Dates.End
		if endDate == "" {
			endDate = exp.Dates.Start
		}
		for _, t := range exp.TechEnv.Technologies {
			add(t, "tech_env.technologies", ConfidenceStructured, endDate)
		}
		for _, t := range exp.TechEnv.Tools {
			add(t, "tech_env.tools", ConfidenceStructured, endDate)
		}
		for _, m := range exp.TechEnv.Methodologies {
			add(m, "tech_env.methodologies", ConfidenceStructured, endDate)
		}
		for _, resp := range exp.Responsibilities {
			scanNarrative(resp, "experience.responsibilities", ConfidenceNarrative, endDate, add)
		}
	}

	// Projects: tech stacks and descriptions.
	for _, proj := range r.Projects {
		for _, t := range proj.Technologies {
			add(t, "project.technologies", ConfidenceProject, "")
		}
		if proj.Description != "" {
			scanNarrative(proj.Description, "project.description", ConfidenceNarrative, "", add)
		}
	}

	// Structured skills section.
	for _, items := range r.Skills.Technical {
		for _, item := range items {
			if item.Name != "" {
				add(item.Name, "skills.technical", ConfidenceStructured, "")
			}
		}
	}

	// Summary narrative.
	if r.Summary != "" {
		scanNarrative(r.Summary, "personal_info.summary", ConfidenceNarrative, "", add)
	}

	entries := make([]store.SkillEntry, 0, len(order))
	for _, canonical := range order {
		a := skillMap[canonical]
		sources := make([]string, 0, len(a.sources))
		for s := range a.sources {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		entries = append(entries, store.SkillEntry{
			ResumeID:        r.ResumeID,
			SkillCanonical:  canonical,
			Confidence:      math.Round(a.maxConf*100) / 100,
			EvidenceCount:   a.count,
			EvidenceSources: sources,
			LastSeen:        a.lastDate,
		})
	}
	return entries
}
