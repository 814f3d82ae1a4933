package skill

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// narrativeSkills are the terms worth detecting in free-form text.
// Regex metacharacters are escaped per entry where needed.
var narrativeSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", `C\+\+`, "C#", "Go", "Rust",
	"Ruby", "PHP", "Scala", "Kotlin", "Swift", "MATLAB",
	"React", "Angular", "Vue", `Node\.js`, "Express", "Django", "Flask",
	"FastAPI", "Spring", "Rails",
	"TensorFlow", "PyTorch", "Keras", "Scikit-learn", "XGBoost",
	"SQL", "NoSQL", "MongoDB", "PostgreSQL", "MySQL", "Redis", "Elasticsearch",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes",
	"Machine Learning", "Deep Learning", "NLP", "Computer Vision",
	"REST API", "GraphQL", "Microservices",
	"Git", "Jenkins", "CI/CD", "Terraform", "Ansible",
	"Agile", "Scrum", "DevOps",
	"Pandas", "NumPy", "Spark", "Kafka", "Hadoop",
	"Selenium", "Cypress", "Jest", "Pytest",
	"HTML", "CSS",
}

type narrativePattern struct {
	re  *regexp.Regexp
	raw string
}

var (
	patternsOnce sync.Once
	patterns     []narrativePattern
)

func narrativePatterns() []narrativePattern {
	patternsOnce.Do(func() {
		patterns = make([]narrativePattern, 0, len(narrativeSkills))
		for _, s := range narrativeSkills {
			re, err := regexp.Compile(`(?i)\b` + s + `\b`)
			if err != nil {
				continue
			}
			raw := strings.NewReplacer(`\.`, ".", `\+`, "+").Replace(strings.ToLower(s))
			patterns = append(patterns, narrativePattern{re: re, raw: raw})
		}
	})
	return patterns
}

// scanNarrative invokes add for each known skill mentioned in text.
func scanNarrative(text, sourceType string, confidence float64, date string, add func(raw, sourceType string, confidence float64, date string)) {
	for _, p := range narrativePatterns() {
		if p.re.MatchString(text) {
			add(p.raw, sourceType, confidence, date)
		}
	}
}

// SkillsInText returns the sorted canonical skills mentioned in a text
// chunk.
func SkillsInText(text string) []string {
	found := make(map[string]struct{})
	for _, p := range narrativePatterns() {
		if p.re.MatchString(text) {
			if canonical := Normalize(p.raw); canonical != "" {
				found[canonical] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(found))
	for s := range found {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
