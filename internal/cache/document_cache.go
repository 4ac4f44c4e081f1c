// Package cache holds the in-memory caches shared by the loader and the
// search engine. Caches are explicitly constructed and injected, never
// ambient globals, so tests get fresh instances.
package cache

import (
	"sync"

	"canvas/internal/domain"
)

// DocumentCache is the single source of truth for "is this document
// already resident". Unbounded by observed behavior: entries are
// invalidated explicitly on save and delete, never by TTL.
type DocumentCache struct {
	mu      sync.RWMutex
	entries map[string]*domain.Document
}

func NewDocumentCache() *DocumentCache {
	return &DocumentCache{entries: make(map[string]*domain.Document)}
}

// Get returns the cached document for id, if resident.
func (c *DocumentCache) Get(id string) (*domain.Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.entries[id]
	return doc, ok
}

// Put stores doc under id. Last write wins.
func (c *DocumentCache) Put(id string, doc *domain.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = doc
}

// Invalidate drops the entry for id, if any.
func (c *DocumentCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// Len returns the number of resident documents.
func (c *DocumentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
