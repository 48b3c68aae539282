package discordpod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore implements Store with one file per key under a root directory.
// Namespaces map to subdirectories. Writes go through a temp file plus rename
// so a crash mid-write never leaves a truncated value behind.
type FileStore struct {
	root string
	mu   sync.Mutex
}

var _ Store = &FileStore{}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store: %w: empty root directory", ErrInvalidKey)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("file store: create root %s: %w", dir, err)
	}
	return &FileStore{root: dir}, nil
}

// Namespace returns a FileStore backed by a subdirectory of the root.
func (s *FileStore) Namespace(name string) (Store, error) {
	if _, err := safeFilename(name); err != nil {
		return nil, err
	}
	return NewFileStore(filepath.Join(s.root, name))
}

func (s *FileStore) Get(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("file store: read %s: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.root, "entry-*.tmp")
	if err != nil {
		return fmt.Errorf("file store: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file store: write %s: %w", key, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("file store: chmod %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("file store: close %s: %w", key, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("file store: rename %s: %w", key, err)
	}
	cleanup = false
	return nil
}

func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file store: delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	name, err := safeFilename(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, name), nil
}

// safeFilename converts a key into a cross-platform safe filename. Keys are
// typically Discord snowflakes but callers may use "kind:id" composites, so
// ':' is replaced before validation ('.'-only names, "..", path separators
// and absolute paths are all rejected so entries always land directly inside
// the store root).
func safeFilename(key string) (string, error) {
	name := strings.ReplaceAll(key, ":", "_")
	if name == "" || name == "." || !filepath.IsLocal(name) || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("file store: %w: %q", ErrInvalidKey, key)
	}
	return name, nil
}
