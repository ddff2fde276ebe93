package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"svkup/internal/fsutil"
)

// ErrNotFound signals that no state file exists yet. It is not a
// failure: it marks a first run.
var ErrNotFound = errors.New("installation metadata not found")

// Store reads and writes the state file at a fixed path.
type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

func (s *Store) Load() (Metadata, error) {
	blob, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("DOC_META_READ: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(blob, &m); err != nil {
		return Metadata{}, fmt.Errorf("DOC_META_PARSE: %s: %w", s.Path, err)
	}
	if m.SourceRepoPath == "" {
		return Metadata{}, fmt.Errorf("DOC_META_SCHEMA: %s: missing sourceRepoPath", s.Path)
	}
	return m, nil
}

// Save writes the record atomically so a crash mid-update never leaves
// a corrupt or partially written state file behind.
func (s *Store) Save(m Metadata) error {
	if m.SourceRepoPath == "" {
		return fmt.Errorf("DOC_META_SCHEMA: refusing to save record without sourceRepoPath")
	}
	sort.Strings(m.InstalledSkills)
	sort.Strings(m.PendingSkills)
	blob, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("DOC_META_ENCODE: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("DOC_META_WRITE: %w", err)
	}
	if err := fsutil.AtomicWrite(s.Path, append(blob, '\n'), 0o644); err != nil {
		return fmt.Errorf("DOC_META_WRITE: %w", err)
	}
	return nil
}
