package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"finqa/internal/domain"
)

// storageKey is the entry that holds the display preference.
const storageKey = "theme"

// Store persists the theme preference.
type Store interface {
	Load() (domain.Theme, bool, error)
	Save(domain.Theme) error
}

// FileStore keeps client state as a flat YAML map on disk. Keys it does not
// own are preserved on write.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// NewFileStore returns a store backed by the YAML file at path. The file is
// created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, log: zerolog.Nop()}
}

// WithLogger sets the logger used to report a discarded state file.
func (s *FileStore) WithLogger(log zerolog.Logger) *FileStore {
	s.log = log
	return s
}

// errCorrupt marks a state file that exists but does not parse.
var errCorrupt = errors.New("corrupt state file")

// Load returns the stored theme. ok is false when nothing usable is stored.
func (s *FileStore) Load() (domain.Theme, bool, error) {
	values, err := s.read()
	if err != nil {
		return "", false, err
	}
	t, ok := domain.ParseTheme(values[storageKey])
	return t, ok, nil
}

// Save writes the theme, creating the state directory as needed. A state
// file that does not parse is replaced.
func (s *FileStore) Save(t domain.Theme) error {
	values, err := s.read()
	if errors.Is(err, errCorrupt) {
		s.log.Warn().Err(err).Str("state_file", s.path).Msg("discarding unreadable state file")
		values, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	values[storageKey] = string(t)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *FileStore) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w: %w", s.path, errCorrupt, err)
	}
	if values == nil {
		values = map[string]string{}
	}
	return values, nil
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	Value string
}

// Load returns the held value. Unknown values count as absent.
func (s *MemoryStore) Load() (domain.Theme, bool, error) {
	t, ok := domain.ParseTheme(s.Value)
	return t, ok, nil
}

// Save replaces the held value.
func (s *MemoryStore) Save(t domain.Theme) error {
	s.Value = string(t)
	return nil
}
