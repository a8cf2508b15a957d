package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the session in a single JSON document. Writes go to a
// temporary file that is renamed over the original, so a reader sees either
// the old pair or the new pair.
type FileStore struct {
	path string
	mu   sync.Mutex
}

var _ Store = (*FileStore)(nil)

type fileDocument struct {
	Token string          `json:"token,omitempty"`
	User  json.RawMessage `json:"user,omitempty"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Save(ctx context.Context, s Session) error {
	if !s.complete() {
		return ErrIncomplete
	}

	data, err := json.MarshalIndent(fileDocument{Token: s.Token, User: s.User}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *FileStore) Load(ctx context.Context) (*Session, error) {
	f.mu.Lock()
	data, err := os.ReadFile(f.path)
	f.mu.Unlock()

	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}

	s := Session{Token: doc.Token, User: doc.User}
	if isNullJSON(s.User) {
		s.User = nil
	}
	if !s.complete() {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

func isNullJSON(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
