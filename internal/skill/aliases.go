// Package skill canonicalizes skill names and extracts the per-resume
// skill ledger from structured resume data.
package skill

import "strings"

// aliases maps common variants and abbreviations to canonical skill names.
// Read-only after package init.
var aliases = map[string]string{
	"ml":                  "machine learning",
	"js":                  "javascript",
	"ts":                  "typescript",
	"py":                  "python",
	"c#":                  "csharp",
	"c sharp":             "csharp",
	"c++":                 "cpp",
	"golang":              "go",
	"dl":                  "deep learning",
	"nlp":                 "natural language processing",
	"cv":                  "computer vision",
	"ai":                  "artificial intelligence",
	"llm":                 "large language models",
	"llms":                "large language models",
	"genai":               "generative ai",
	"gen ai":              "generative ai",
	"sklearn":             "scikit-learn",
	"scikit learn":        "scikit-learn",
	"tf":                  "tensorflow",
	"react.js":            "react",
	"reactjs":             "react",
	"vue.js":              "vue",
	"vuejs":               "vue",
	"angular.js":          "angular",
	"angularjs":           "angular",
	"next.js":             "nextjs",
	"node.js":             "nodejs",
	"node js":             "nodejs",
	"node":                "nodejs",
	"express.js":          "express",
	"expressjs":           "express",
	"fast api":            "fastapi",
	"postgres":            "postgresql",
	"pg":                  "postgresql",
	"mongo":               "mongodb",
	"amazon web services": "aws",
	"gcp":                 "google cloud platform",
	"google cloud":        "google cloud platform",
	"k8s":                 "kubernetes",
	"html5":               "html",
	"css3":                "css",
}

// Normalize maps a raw skill string to its canonical form: trims
// whitespace, lowercases, strips trailing punctuation, and applies the
// alias table. Returns "" for empty input.
func Normalize(raw string) string {
	cleaned := strings.TrimRight(strings.ToLower(strings.TrimSpace(raw)), ".,;:")
	if canonical, ok := aliases[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// NormalizeList normalizes each skill and removes duplicates, keeping
// first-seen order.
func NormalizeList(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	result := make([]string, 0, len(raw))
	for _, r := range raw {
		canonical := Normalize(r)
		if canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		result = append(result, canonical)
	}
	return result
}
