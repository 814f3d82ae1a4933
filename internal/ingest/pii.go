package ingest

import (
	"regexp"
	"strings"
)

const redactedMark = "[REDACTED]"

// Generic catch-all patterns applied to every resume.
var (
	genericEmail = regexp.MustCompile(`(?i)[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	genericPhone = regexp.MustCompile(`\+?\d[\d\s\-\(\)]{7,}\d`)
)

// Redactor removes a candidate's PII from free text before it is
// chunked and embedded. Patterns are built per resume from the fields
// of its personal_info block, plus generic email and phone catch-alls.
type Redactor struct {
	patterns []*regexp.Regexp
}

// NewRedactor compiles redaction patterns for one resume.
func NewRedactor(raw *RawResume) *Redactor {
	pi := raw.PersonalInfo
	var patterns []*regexp.Regexp

	literal := func(s string) {
		if strings.TrimSpace(s) == "" {
			return
		}
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(s)))
	}
	literal(pi.Email)
	literal(pi.Phone)
	if len(pi.Name) > 2 {
		literal(pi.Name)
	}
	literal(pi.LinkedIn)
	literal(pi.GitHub)

	patterns = append(patterns, genericEmail, genericPhone)
	return &Redactor{patterns: patterns}
}

// Sanitize replaces every PII occurrence in text with a redaction mark.
func (r *Redactor) Sanitize(text string) string {
	if text == "" {
		return text
	}
	for _, p := range r.patterns {
		text = p.ReplaceAllString(text, redactedMark)
	}
	return text
}
