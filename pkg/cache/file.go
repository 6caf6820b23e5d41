package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one JSON file per key in a directory.
type FileStore struct {
	Dir string
}

// DefaultDir is ~/.lbc/cache, or .lbc/cache when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lbc", "cache")
	}
	return filepath.Join(home, ".lbc", "cache")
}

// NewFileStore creates a FileStore rooted at dir. An empty dir means DefaultDir.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = DefaultDir()
	}
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func checkKey(key string) error {
	if key == "" {
		return fmt.Errorf("cache key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}

// Get loads the entry stored under key.
func (s *FileStore) Get(ctx context.Context, key string) (*Entry, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

// Put writes the entry atomically: a temp file in the same directory is
// synced and then renamed over the destination.
func (s *FileStore) Put(ctx context.Context, key string, entry *Entry) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(s.Dir, "tmp-"+key+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	dest := s.path(key)
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to replace cache entry: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Remove deletes the entry if it exists.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// Clear deletes every entry file. A missing directory holds zero entries.
func (s *FileStore) Clear(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to list cache: %w", err)
	}

	count := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
			return count, fmt.Errorf("failed to remove %s: %w", name, err)
		}
		count++
	}
	return count, nil
}
