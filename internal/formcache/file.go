package formcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/job-applier/internal/types"
)

// File is a Cache persisted as one JSON object mapping URL to schema.
//
// The whole store is loaded on first access. Every Put re-reads the file,
// applies the change and replaces the file atomically (temp file + rename),
// so a crash mid-write leaves the previous contents intact.
type File struct {
	path string

	mu      sync.Mutex
	loaded  bool
	entries map[string]types.FormSchema
}

// NewFile returns a cache backed by path. The file and its directory are created on first Put.
func NewFile(path string) *File {
	return &File{path: path}
}

// Get implements Cache.
func (f *File) Get(_ context.Context, url string) (*types.FormSchema, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		entries, err := readStore(f.path)
		if err != nil {
			return nil, false, err
		}
		f.entries = entries
		f.loaded = true
	}

	schema, ok := f.entries[url]
	if !ok {
		return nil, false, nil
	}
	return schema.Clone(), true, nil
}

// Put implements Cache.
func (f *File) Put(_ context.Context, url string, schema types.FormSchema) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := readStore(f.path)
	if err != nil {
		return err
	}
	entries[url] = *schema.Clone()

	if err := writeStore(f.path, entries); err != nil {
		return err
	}
	f.entries = entries
	f.loaded = true
	return nil
}

func readStore(path string) (map[string]types.FormSchema, error) {
	entries := make(map[string]types.FormSchema)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("failed to read form cache %s: %w", path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse form cache %s: %w", path, err)
	}
	return entries, nil
}

func writeStore(path string, entries map[string]types.FormSchema) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal form cache: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create form cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write form cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync form cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close form cache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace form cache: %w", err)
	}
	return nil
}
