package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/porenet-mcp/internal/poreseg"
	"github.com/ironsheep/porenet-mcp/internal/voxel"
)

// DefaultResultLimit is the number of extractions kept before the oldest is
// dropped.
const DefaultResultLimit = 8

// Extraction is a stored pore_extract result.
type Extraction struct {
	ID        string
	Paths     []string
	Threshold uint8
	Options   poreseg.Options
	Mask      *voxel.Mask
	Result    *poreseg.Result
	Created   time.Time
	Elapsed   time.Duration
}

// ResultCache holds extractions by id. Once limit entries are stored, adding
// another drops the oldest.
type ResultCache struct {
	mu      sync.RWMutex
	limit   int
	entries map[string]*Extraction
	order   []string
}

// NewResultCache creates an empty cache holding at most limit extractions.
func NewResultCache(limit int) *ResultCache {
	if limit < 1 {
		limit = 1
	}
	return &ResultCache{
		limit:   limit,
		entries: make(map[string]*Extraction),
	}
}

// Add assigns e a fresh id and stores it. It returns the extractions dropped
// to stay within the limit, oldest first.
func (c *ResultCache) Add(e *Extraction) (string, []*Extraction) {
	e.ID = uuid.New().String()

	c.mu.Lock()
	defer c.mu.Unlock()
	var dropped []*Extraction
	for len(c.order) >= c.limit {
		dropped = append(dropped, c.entries[c.order[0]])
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[e.ID] = e
	c.order = append(c.order, e.ID)
	return e.ID, dropped
}

// Get returns the extraction stored under id.
func (c *ResultCache) Get(id string) (*Extraction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, fmt.Errorf("unknown extraction id %q", id)
	}
	return e, nil
}

// Remove drops id and returns the extraction stored under it, or nil.
func (c *ResultCache) Remove(id string) *Extraction {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	delete(c.entries, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return e
}

// UsesMask reports whether any stored extraction was computed from m.
func (c *ResultCache) UsesMask(m *voxel.Mask) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.entries {
		if e.Mask == m {
			return true
		}
	}
	return false
}

// Len returns the number of stored extractions.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
