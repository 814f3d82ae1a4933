package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// maxNameLength is the maximum allowed saved-search name length.
const maxNameLength = 64

// validNamePattern matches alphanumeric, hyphen, and underscore.
var validNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateName validates a saved-search name. Valid names contain only
// letters, numbers, hyphens, and underscores, which keeps them safe to
// use as file names.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("search name cannot be empty")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("search name too long (max %d chars)", maxNameLength)
	}
	if !validNamePattern.MatchString(name) {
		return fmt.Errorf("search name can only contain letters, numbers, hyphens, and underscores")
	}
	return nil
}

// save persists a saved search to dir using an atomic write (temp file
// + rename), so a crash never leaves a truncated file behind.
func save(dir string, s *SavedSearch) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal saved search: %w", err)
	}

	path := searchPath(dir, s.Name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write saved search: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save search file: %w", err)
	}
	return nil
}

// load reads one saved search by name.
func load(dir, name string) (*SavedSearch, error) {
	data, err := os.ReadFile(searchPath(dir, name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("saved search %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saved search: %w", err)
	}

	var s SavedSearch
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse saved search %q: %w", name, err)
	}
	return &s, nil
}

func searchPath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}
