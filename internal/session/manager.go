package session

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// DefaultMaxSearches is the default cap on saved searches.
const DefaultMaxSearches = 50

// ManagerConfig configures the saved-search manager.
type ManagerConfig struct {
	// StoragePath is the directory where saved searches are stored.
	StoragePath string

	// MaxSearches caps how many searches may be saved.
	// Defaults to DefaultMaxSearches.
	MaxSearches int
}

// Manager handles saved-search lifecycle operations.
type Manager struct {
	storagePath string
	maxSearches int
}

// NewManager creates a saved-search manager, creating the storage
// directory if needed.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.StoragePath == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := os.MkdirAll(cfg.StoragePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions storage: %w", err)
	}

	max := cfg.MaxSearches
	if max <= 0 {
		max = DefaultMaxSearches
	}
	return &Manager{storagePath: cfg.StoragePath, maxSearches: max}, nil
}

// Save persists a saved search. Saving under an existing name
// overwrites it; new names count against the cap.
func (m *Manager) Save(s *SavedSearch) error {
	if err := ValidateName(s.Name); err != nil {
		return fmt.Errorf("invalid search name: %w", err)
	}

	if !m.Exists(s.Name) {
		count, err := m.count()
		if err != nil {
			return err
		}
		if count >= m.maxSearches {
			return fmt.Errorf("maximum %d saved searches reached; delete old ones first", m.maxSearches)
		}
	}
	return save(m.storagePath, s)
}

// Get loads one saved search by name.
func (m *Manager) Get(name string) (*SavedSearch, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("invalid search name: %w", err)
	}
	return load(m.storagePath, name)
}

// Touch records an execution of the named search and persists it.
func (m *Manager) Touch(name string) (*SavedSearch, error) {
	s, err := m.Get(name)
	if err != nil {
		return nil, err
	}
	s.Touch()
	if err := save(m.storagePath, s); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns summaries of all saved searches, most recently used
// first.
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Info{}, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	infos := []*Info{}
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok {
			continue
		}
		s, err := load(m.storagePath, name)
		if err != nil {
			// Skip corrupted entries rather than failing the listing.
			continue
		}
		infos = append(infos, s.ToInfo())
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].LastUsed.Equal(infos[j].LastUsed) {
			return infos[i].LastUsed.After(infos[j].LastUsed)
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, nil
}

// Delete removes a saved search.
func (m *Manager) Delete(name string) error {
	if err := ValidateName(name); err != nil {
		return fmt.Errorf("invalid search name: %w", err)
	}
	if err := os.Remove(searchPath(m.storagePath, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("saved search %q not found", name)
		}
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	return nil
}

// Exists reports whether a saved search with the given name exists.
func (m *Manager) Exists(name string) bool {
	_, err := os.Stat(searchPath(m.storagePath, name))
	return err == nil
}

func (m *Manager) count() (int, error) {
	entries, err := os.ReadDir(m.storagePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sessions directory: %w", err)
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			n++
		}
	}
	return n, nil
}
