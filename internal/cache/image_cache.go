package cache

import (
	"image"
	"strings"
	"sync"
)

// CompositeImageKey builds the precise per-document image cache key.
func CompositeImageKey(documentID, filename string) string {
	return documentID + "_" + filename
}

// ImageCache holds decoded header images. Every successful load
// populates two keys: the composite "<documentID>_<filename>" and the
// bare "<filename>" fallback used when the same asset is reused across
// contexts, so either lookup strategy hits.
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]image.Image
}

func NewImageCache() *ImageCache {
	return &ImageCache{entries: make(map[string]image.Image)}
}

// Get returns the cached image for key, if resident.
func (c *ImageCache) Get(key string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.entries[key]
	return img, ok
}

// Put stores img under key. Last write wins.
func (c *ImageCache) Put(key string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = img
}

// InvalidateDocument drops every composite-keyed entry for documentID.
// Bare-filename entries stay: other documents may share the asset.
func (c *ImageCache) InvalidateDocument(documentID string) {
	prefix := documentID + "_"
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}
