package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talentsift/talentsift/internal/skill"
	"github.com/talentsift/talentsift/internal/store"
)

// GenerateChunks builds the searchable chunks for one resume: one
// summary chunk, one per experience entry, one per project, one per
// education entry, and a combined technical-skills chunk. All text is
// sanitized before it leaves this function.
func GenerateChunks(core *store.Resume, redactor *Redactor) []store.Chunk {
	var chunks []store.Chunk

	if core.Summary != "" {
		chunks = append(chunks, makeChunk(core.ResumeID, store.SectionSummary, 0,
			redactor.Sanitize(core.Summary), "", ""))
	}

	for i, exp := range core.Experience {
		chunks = append(chunks, makeChunk(core.ResumeID, store.SectionExperience, i,
			redactor.Sanitize(experienceText(exp)), exp.Dates.Start, exp.Dates.End))
	}

	for i, proj := range core.Projects {
		chunks = append(chunks, makeChunk(core.ResumeID, store.SectionProject, i,
			redactor.Sanitize(projectText(proj)), "", ""))
	}

	for i, edu := range core.Education {
		end := edu.Dates.ExpectedGraduation
		if end == "" {
			end = edu.Dates.End
		}
		chunks = append(chunks, makeChunk(core.ResumeID, store.SectionEducation, i,
			redactor.Sanitize(educationText(edu)), edu.Dates.Start, end))
	}

	if text := skillsText(core.Skills); text != "" {
		chunks = append(chunks, makeChunk(core.ResumeID, store.SectionSkills, 0,
			redactor.Sanitize(text), "", ""))
	}

	return chunks
}

func experienceText(exp store.Experience) string {
	var parts []string

	switch {
	case exp.Title != "" && exp.Company != "":
		parts = append(parts, exp.Title+" at "+exp.Company)
	case exp.Title != "":
		parts = append(parts, exp.Title)
	}

	if exp.Level != "" || exp.EmploymentType != "" {
		var info []string
		if exp.Level != "" {
			info = append(info, exp.Level)
		}
		if exp.EmploymentType != "" {
			info = append(info, exp.EmploymentType)
		}
		parts = append(parts, "("+strings.Join(info, ", ")+")")
	}

	if exp.Dates.Duration != "" {
		parts = append(parts, "Duration: "+exp.Dates.Duration)
	}

	if len(exp.Responsibilities) > 0 {
		parts = append(parts, "Responsibilities:")
		for _, resp := range exp.Responsibilities {
			parts = append(parts, "- "+resp)
		}
	}

	var tech []string
	tech = append(tech, exp.TechEnv.Technologies...)
	tech = append(tech, exp.TechEnv.Tools...)
	tech = append(tech, exp.TechEnv.Methodologies...)
	if len(tech) > 0 {
		parts = append(parts, "Technical Environment: "+strings.Join(tech, ", "))
	}

	return strings.Join(parts, "\n")
}

func projectText(proj store.Project) string {
	var parts []string
	if proj.Name != "" {
		parts = append(parts, "Project: "+proj.Name)
	}
	if proj.Role != "" {
		parts = append(parts, "Role: "+proj.Role)
	}
	if proj.Description != "" {
		parts = append(parts, proj.Description)
	}
	if proj.Impact != "" {
		parts = append(parts, "Impact: "+proj.Impact)
	}
	if len(proj.Technologies) > 0 {
		parts = append(parts, "Technologies: "+strings.Join(proj.Technologies, ", "))
	}
	return strings.Join(parts, "\n")
}

func educationText(edu store.Education) string {
	var parts []string

	if edu.Degree.Level != "" && edu.Degree.Field != "" {
		parts = append(parts, edu.Degree.Level+"'s degree in "+edu.Degree.Field)
	}
	if edu.Degree.Major != "" && edu.Degree.Major != edu.Degree.Field {
		parts = append(parts, "Major: "+edu.Degree.Major)
	}
	if edu.Institution.Name != "" {
		parts = append(parts, "Institution: "+edu.Institution.Name)
	}

	end := edu.Dates.ExpectedGraduation
	if end == "" {
		end = edu.Dates.End
	}
	if edu.Dates.Start != "" && end != "" {
		parts = append(parts, "Period: "+edu.Dates.Start+" - "+end)
	}

	if len(edu.Achievements.RelevantCoursework) > 0 {
		parts = append(parts, "Coursework: "+strings.Join(edu.Achievements.RelevantCoursework, ", "))
	}
	if edu.Achievements.Honors != "" {
		parts = append(parts, "Honors: "+edu.Achievements.Honors)
	}
	if edu.Achievements.GPA != "" {
		parts = append(parts, "GPA: "+string(edu.Achievements.GPA))
	}

	return strings.Join(parts, "\n")
}

func skillsText(skills store.SkillsSection) string {
	if len(skills.Technical) == 0 {
		return ""
	}
	parts := []string{"Technical Skills:"}
	for _, category := range sortedKeys(skills.Technical) {
		var names []string
		for _, item := range skills.Technical[category] {
			if item.Name == "" {
				continue
			}
			if item.Level != "" {
				names = append(names, item.Name+" ("+item.Level+")")
			} else {
				names = append(names, item.Name)
			}
		}
		if len(names) > 0 {
			parts = append(parts, categoryLabel(category)+": "+strings.Join(names, ", "))
		}
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, "\n")
}

func sortedKeys(m map[string][]store.SkillItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// categoryLabel turns a snake_case category key into a display label.
func categoryLabel(category string) string {
	words := strings.Split(category, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func makeChunk(resumeID, sectionType string, ordinal int, text, startDate, endDate string) store.Chunk {
	return store.Chunk{
		ChunkID:        md5Hex([]byte(fmt.Sprintf("%s:%s:%d", resumeID, sectionType, ordinal))),
		ResumeID:       resumeID,
		SectionType:    sectionType,
		SectionOrdinal: ordinal,
		ChunkText:      text,
		SkillsInChunk:  skill.SkillsInText(text),
		StartDate:      startDate,
		EndDate:        endDate,
	}
}
