// Package store persists notes as a single JSON list, newest first.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chaz8081/notepulse/internal/note"
)

var (
	// ErrNotFound is returned when no note matches an id.
	ErrNotFound = errors.New("store: note not found")
	// ErrAmbiguous is returned when an id prefix matches several notes.
	ErrAmbiguous = errors.New("store: id prefix matches more than one note")
)

// Store is a flat file of notes. Safe for concurrent use within a process.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open returns a Store backed by the file at path. The file is created on
// the first write.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns all saved notes. A missing file is an empty store. A file
// that cannot be read or decoded is logged and also treated as empty.
func (s *Store) Load() []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save prepends n and returns the updated list. It fails without writing
// when the existing file cannot be read or decoded.
func (s *Store) Save(n note.Note) ([]note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return nil, err
	}
	notes := append([]note.Note{n}, existing...)
	if err := s.write(notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Overwrite replaces the stored list with notes.
func (s *Store) Overwrite(notes []note.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(notes)
}

// Find returns the note whose id equals id or uniquely starts with it.
func (s *Store) Find(id string) (note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.load()
	i, err := match(notes, id)
	if err != nil {
		return note.Note{}, err
	}
	return notes[i], nil
}

// Delete removes the note matching id (see Find). Like Save, it refuses to
// rewrite a file it cannot decode.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.read()
	if err != nil {
		return err
	}
	i, err := match(notes, id)
	if err != nil {
		return err
	}
	return s.write(append(notes[:i], notes[i+1:]...))
}

func match(notes []note.Note, id string) (int, error) {
	if id == "" {
		return -1, ErrNotFound
	}
	found := -1
	for i, n := range notes {
		if n.ID == id {
			return i, nil
		}
		if strings.HasPrefix(n.ID, id) {
			if found >= 0 {
				return -1, fmt.Errorf("%w: %q", ErrAmbiguous, id)
			}
			found = i
		}
	}
	if found < 0 {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return found, nil
}

func (s *Store) load() []note.Note {
	notes, err := s.read()
	if err != nil {
		slog.Error("failed to load notes", "path", s.path, "error", err)
		return []note.Note{}
	}
	return notes
}

// read is the strict form of load used before writing, so a file that
// cannot be decoded is never replaced by a shorter list.
func (s *Store) read() ([]note.Note, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []note.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read notes: %w", err)
	}

	var notes []note.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("store: decode notes: %w", err)
	}
	if notes == nil {
		notes = []note.Note{}
	}
	return notes, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *Store) write(notes []note.Note) error {
	if notes == nil {
		notes = []note.Note{}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode notes: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("store: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("store: write notes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: write notes: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("store: replace notes file: %w", err)
	}
	return nil
}
