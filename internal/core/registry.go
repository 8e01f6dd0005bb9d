package core

import (
	"sort"
	"sync"
	"time"
)

// datasetCache holds uploaded and derived datasets by ID.
// Entries expire after sitting idle for ttl; when the cache is full the
// least recently used entry is evicted.
type datasetCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	max     int
}

type cacheEntry struct {
	ds       *Dataset
	lastUsed time.Time
}

func newDatasetCache(ttl time.Duration, max int) *datasetCache {
	return &datasetCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		max:     max,
	}
}

// put stores ds, evicting the least recently used entries beyond max.
// Returns the IDs that were evicted.
func (c *datasetCache) put(ds *Dataset, now time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[ds.ID] = &cacheEntry{ds: ds, lastUsed: now}

	if c.max <= 0 || len(c.entries) <= c.max {
		return nil
	}

	ids := make([]string, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return c.entries[ids[i]].lastUsed.Before(c.entries[ids[j]].lastUsed)
	})

	var evicted []string
	for _, id := range ids {
		if len(c.entries) <= c.max {
			break
		}
		if id == ds.ID {
			continue
		}
		delete(c.entries, id)
		evicted = append(evicted, id)
	}
	return evicted
}

// get returns the dataset and marks it used. Expired entries are removed.
func (c *datasetCache) get(id string, now time.Time) (*Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && now.Sub(e.lastUsed) > c.ttl {
		delete(c.entries, id)
		return nil, false
	}
	e.lastUsed = now
	return e.ds, true
}

// sweep removes every entry idle longer than ttl and returns their IDs.
func (c *datasetCache) sweep(now time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expired []string
	for id, e := range c.entries {
		if c.ttl > 0 && now.Sub(e.lastUsed) > c.ttl {
			delete(c.entries, id)
			expired = append(expired, id)
		}
	}
	sort.Strings(expired)
	return expired
}

// len returns the number of cached datasets.
func (c *datasetCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
