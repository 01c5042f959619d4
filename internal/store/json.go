package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Document file names inside the data directory.
const (
	FileVocables = "vokabeln.json"
	FileScores   = "scores.json"
	FileSessions = "sessions.json"
)

// JSONStore is the canonical store: three UTF-8 JSON documents in a data
// directory. A missing document reads as an empty collection; the first
// save creates it. Every save overwrites the whole file.
type JSONStore struct {
	dir string
}

// NewJSONStore creates a JSON-file store rooted at dir, creating the
// directory if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) LoadVocables() ([]Vocable, error) {
	var vocables []Vocable
	if err := s.load(FileVocables, &vocables); err != nil {
		return nil, err
	}
	return vocables, nil
}

func (s *JSONStore) SaveVocables(vocables []Vocable) error {
	if vocables == nil {
		vocables = []Vocable{}
	}
	return s.save(FileVocables, vocables)
}

func (s *JSONStore) LoadScores() (Scores, error) {
	scores := Scores{}
	if err := s.load(FileScores, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

func (s *JSONStore) SaveScores(scores Scores) error {
	if scores == nil {
		scores = Scores{}
	}
	return s.save(FileScores, scores)
}

func (s *JSONStore) LoadSessions() ([]Session, error) {
	var sessions []Session
	if err := s.load(FileSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (s *JSONStore) SaveSessions(sessions []Session) error {
	if sessions == nil {
		sessions = []Session{}
	}
	return s.save(FileSessions, sessions)
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) load(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (s *JSONStore) save(name string, v any) error {
	file, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(v); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
