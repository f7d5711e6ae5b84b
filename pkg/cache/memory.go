// Package cache provides a thread-safe, in-memory key-value store with
// TTL-based expiration and active memory management (eviction).
package cache

import (
	"sort"
	"sync"
	"time"

	"dentcheck/pkg/logger"
	"dentcheck/pkg/utils"
)

const (
	DefaultMaxSize = 64 // MB
	DefaultTTL     = 30 * time.Minute

	// DefaultMaxItemSize: larger blobs are streamed from the store every time.
	DefaultMaxItemSize = 2 << 20

	GCInterval      = 5 * time.Minute
	MonitorInterval = 30 * time.Minute
)

type Options struct {
	Enabled       bool
	MaxCapacityMB int
	TTL           time.Duration
	MaxItemSize   int64
}

type Item struct {
	Data      []byte
	ExpiresAt time.Time
	Size      int64
}

type MemoryCache struct {
	sync.RWMutex
	items       map[string]Item
	totalSize   int64
	maxSize     int64
	maxItemSize int64
	ttl         time.Duration
	enabled     bool
	now         func() time.Time
}

// New builds the cache. Background GC and monitoring only run while enabled;
// a disabled cache is a pass-through.
func New(opts Options) *MemoryCache {
	limitMB := int64(opts.MaxCapacityMB)
	if limitMB <= 0 {
		limitMB = DefaultMaxSize
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	maxItem := opts.MaxItemSize
	if maxItem <= 0 {
		maxItem = DefaultMaxItemSize
	}

	c := &MemoryCache{
		maxSize:     limitMB * 1024 * 1024,
		maxItemSize: maxItem,
		ttl:         ttl,
		enabled:     opts.Enabled,
		now:         time.Now,
	}

	if c.enabled {
		c.items = make(map[string]Item)

		go c.startGC()
		go c.startMonitor()

		logger.LogInfo("Memory Cache Initialized: %d MB Limit, TTL: %s", limitMB, ttl)
	} else {
		logger.LogWarn("Memory Cache is DISABLED via config (Running in pass-through mode).")
	}
	return c
}

func (c *MemoryCache) Enabled() bool { return c.enabled }

// Set stores a value with the configured TTL. Items above the per-item limit
// or half the capacity are skipped.
func (c *MemoryCache) Set(key string, data []byte) {
	if !c.enabled {
		return
	}

	c.Lock()
	defer c.Unlock()

	size := int64(len(data))
	if size > c.maxSize/2 || size > c.maxItemSize {
		return
	}

	if oldItem, exists := c.items[key]; exists {
		c.totalSize -= oldItem.Size
		delete(c.items, key)
	}

	if c.totalSize+size > c.maxSize {
		c.prune(size)
	}

	c.items[key] = Item{
		Data:      data,
		ExpiresAt: c.now().Add(c.ttl),
		Size:      size,
	}
	c.totalSize += size
}

// Get retrieves an item if it exists and hasn't expired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	c.RLock()
	defer c.RUnlock()

	item, found := c.items[key]
	if !found || c.now().After(item.ExpiresAt) {
		return nil, false
	}
	return item.Data, true
}

func (c *MemoryCache) Delete(key string) {
	if !c.enabled {
		return
	}

	c.Lock()
	defer c.Unlock()

	if item, found := c.items[key]; found {
		delete(c.items, key)
		c.totalSize -= item.Size
	}
}

// Usage returns the item count and the bytes held.
func (c *MemoryCache) Usage() (int, int64) {
	c.RLock()
	defer c.RUnlock()
	return len(c.items), c.totalSize
}

// prune evicts the soonest-expiring items until usage is at most 80% of
// capacity minus needed. Caller holds the write lock.
func (c *MemoryCache) prune(needed int64) {
	if len(c.items) == 0 {
		return
	}

	targetSize := int64(float64(c.maxSize)*0.80) - needed

	type candidate struct {
		Key       string
		ExpiresAt time.Time
		Size      int64
	}

	candidates := make([]candidate, 0, len(c.items))
	for k, v := range c.items {
		candidates = append(candidates, candidate{k, v.ExpiresAt, v.Size})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ExpiresAt.Before(candidates[j].ExpiresAt)
	})

	for _, cand := range candidates {
		if c.totalSize <= targetSize {
			break
		}
		delete(c.items, cand.Key)
		c.totalSize -= cand.Size
	}
}

// removeExpired drops every expired item and reports what it freed.
func (c *MemoryCache) removeExpired() (int, int64) {
	c.Lock()
	defer c.Unlock()

	now := c.now()
	removedCount := 0
	removedBytes := int64(0)
	for k, v := range c.items {
		if now.After(v.ExpiresAt) {
			delete(c.items, k)
			c.totalSize -= v.Size
			removedBytes += v.Size
			removedCount++
		}
	}
	return removedCount, removedBytes
}

func (c *MemoryCache) startGC() {
	ticker := time.NewTicker(GCInterval)
	for range ticker.C {
		if n, freed := c.removeExpired(); n > 0 {
			logger.LogDebug("[CACHE] GC: Cleaned %d items (%s freed)", n, utils.FormatBytes(freed))
		}
	}
}

func (c *MemoryCache) startMonitor() {
	ticker := time.NewTicker(MonitorInterval)
	for range ticker.C {
		count, used := c.Usage()
		if count == 0 {
			continue
		}

		percent := (float64(used) / float64(c.maxSize)) * 100
		logger.LogInfo("[CACHE] Cache: %d items | Usage: %s / %s (%.2f%%)",
			count,
			utils.FormatBytes(used),
			utils.FormatBytes(c.maxSize),
			percent,
		)
	}
}
