// Package formcache stores resolved form schemas keyed by page URL.
//
// Entries never expire: one entry per URL, last write wins. A site that changes
// its form layout keeps being served the old schema until the entry is
// refreshed with a new resolution.
package formcache

import (
	"context"
	"sync"

	"github.com/jonathan/job-applier/internal/types"
)

// Cache is a durable URL to FormSchema mapping.
type Cache interface {
	// Get returns the schema stored for url. ok is false when there is none.
	Get(ctx context.Context, url string) (schema *types.FormSchema, ok bool, err error)
	// Put stores schema for url, replacing any previous entry.
	Put(ctx context.Context, url string, schema types.FormSchema) error
}

// Memory is a process-local Cache. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]types.FormSchema
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]types.FormSchema)}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, url string) (*types.FormSchema, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	schema, ok := m.entries[url]
	if !ok {
		return nil, false, nil
	}
	return schema.Clone(), true, nil
}

// Put implements Cache.
func (m *Memory) Put(_ context.Context, url string, schema types.FormSchema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[url] = *schema.Clone()
	return nil
}

// Len returns the number of entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
