package index

import (
	"sync"
	"time"

	"github.com/MrSnakeDoc/staticsite/internal/domain"
)

// MemoryIndex holds the site content the handlers serve. The preview server
// swaps it on reload; a render pass sees whatever it held when it started.
type MemoryIndex struct {
	mu         sync.RWMutex
	content    *domain.Content
	pages      map[string]*domain.Page // slug -> page, posts included
	lastReload time.Time               // Timestamp of last content reload
}

// NewMemoryIndex creates an index holding c.
func NewMemoryIndex(c *domain.Content) *MemoryIndex {
	idx := &MemoryIndex{}
	idx.Update(c)
	return idx
}

// Update replaces the indexed content.
func (idx *MemoryIndex) Update(c *domain.Content) {
	if c == nil {
		c = &domain.Content{}
	}
	pages := make(map[string]*domain.Page, len(c.Pages)+len(c.Posts))
	for _, p := range c.Pages {
		pages[p.Slug] = p
	}
	for _, p := range c.Posts {
		pages[p.Slug] = p
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.content = c
	idx.pages = pages
	idx.lastReload = time.Now()
}

// Current returns the indexed content. Callers must not modify it.
func (idx *MemoryIndex) Current() *domain.Content {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.content
}

// Count returns the number of pages and posts in the index
func (idx *MemoryIndex) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return len(idx.pages)
}

// GetLastReload returns the timestamp of the last content reload
func (idx *MemoryIndex) GetLastReload() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	return idx.lastReload
}
