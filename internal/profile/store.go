package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kalambet/autoreply/internal/style"
)

// FileStore reads and writes the style document at a fixed path. It does
// no locking of its own; Manager serializes access within a process.
type FileStore struct {
	path string
}

// NewFileStore returns a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the document location.
func (s *FileStore) Path() string { return s.path }

// Load returns the stored profile. A missing file yields an empty profile.
func (s *FileStore) Load() (style.Profile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return style.Profile{}, nil
	}
	if err != nil {
		return style.Profile{}, fmt.Errorf("reading style profile: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return style.Profile{}, fmt.Errorf("parsing style profile %s: %w", s.path, err)
	}
	if doc.SchemaVersion > SchemaVersion {
		slog.Warn("style profile written by a newer version", "path", s.path, "schema_version", doc.SchemaVersion)
	}
	return doc.Profile, nil
}

// Save rewrites the whole document. Keys this version does not model are
// carried over from the file on disk, and a newer schema_version is kept.
// The write goes to a temp file in the same directory and is renamed over
// the target.
func (s *FileStore) Save(p style.Profile) error {
	fields, err := s.readFields()
	if err != nil {
		return err
	}
	version := SchemaVersion
	if raw, ok := fields["schema_version"]; ok {
		var v int
		if json.Unmarshal(raw, &v) == nil && v > version {
			version = v
		}
	}

	typed, err := json.Marshal(Document{SchemaVersion: version, Profile: p})
	if err != nil {
		return fmt.Errorf("marshalling style profile: %w", err)
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(typed, &overlay); err != nil {
		return fmt.Errorf("marshalling style profile: %w", err)
	}
	for k, v := range overlay {
		fields[k] = v
	}

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling style profile: %w", err)
	}
	if err := writeFileAtomic(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing style profile: %w", err)
	}
	return nil
}

// readFields returns the top-level keys of the current document. A missing
// file yields an empty map.
func (s *FileStore) readFields() (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fields, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading style profile: %w", err)
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("parsing style profile %s: %w", s.path, err)
	}
	return fields, nil
}

// Remove deletes the document. Removing a missing file is not an error.
func (s *FileStore) Remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing style profile: %w", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte, mode fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp_style_*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
