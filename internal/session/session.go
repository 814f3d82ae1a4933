// Package session persists named saved searches. Recruiters save a
// query under a name and re-run it later from the CLI or the API.
package session

import (
	"time"

	"github.com/talentsift/talentsift/internal/search"
	"github.com/talentsift/talentsift/pkg/version"
)

// SavedSearch is a named, reusable search request.
type SavedSearch struct {
	// Name is the user-provided identifier.
	Name string `json:"name"`

	// Request is the stored query.
	Request search.Request `json:"request"`

	// QueryText is the free-text query for agentic runs, when the
	// saved search was created from one.
	QueryText string `json:"query_text,omitempty"`

	// CreatedAt is when the search was first saved.
	CreatedAt time.Time `json:"created_at"`

	// LastUsed is when the search was last executed.
	LastUsed time.Time `json:"last_used"`

	// Version is the talentsift version that created this search.
	Version string `json:"version"`

	// RunCount is how many times the search has been executed.
	RunCount int `json:"run_count"`
}

// NewSavedSearch creates a saved search with the given name.
func NewSavedSearch(name string, req search.Request, queryText string) *SavedSearch {
	now := time.Now()
	return &SavedSearch{
		Name:      name,
		Request:   req,
		QueryText: queryText,
		CreatedAt: now,
		LastUsed:  now,
		Version:   version.Version,
	}
}

// Touch records an execution.
func (s *SavedSearch) Touch() {
	s.LastUsed = time.Now()
	s.RunCount++
}

// Info is a summary row for listing saved searches.
type Info struct {
	Name     string    `json:"name"`
	Skills   []string  `json:"skills"`
	LastUsed time.Time `json:"last_used"`
	RunCount int       `json:"run_count"`
}

// ToInfo converts a SavedSearch to its listing summary.
func (s *SavedSearch) ToInfo() *Info {
	return &Info{
		Name:     s.Name,
		Skills:   s.Request.Skills,
		LastUsed: s.LastUsed,
		RunCount: s.RunCount,
	}
}
