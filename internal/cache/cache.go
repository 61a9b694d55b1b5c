// Package cache provides the rendered-output cache with LRU eviction and TTL
// support. Entries are keyed by route path.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// RenderCache caches rendered responses with LRU eviction and TTL
type RenderCache struct {
	entries     map[string]*Entry
	mutex       sync.Mutex
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	now         func() time.Time
	// LRU implementation
	head *Entry
	tail *Entry
	// Statistics tracking (atomic for thread safety)
	hits          int64
	misses        int64
	sets          int64
	invalidations int64
	evictions     int64
}

// Entry represents a cached response
type Entry struct {
	Key         string
	Value       []byte
	ContentType string
	CreatedAt   time.Time
	AccessedAt  time.Time
	Size        int64
	// LRU doubly-linked list pointers
	prev *Entry
	next *Entry
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries       int     `json:"entries" yaml:"entries"`
	Size          int64   `json:"size" yaml:"size"`
	MaxSize       int64   `json:"max_size" yaml:"max_size"`
	Hits          int64   `json:"hits" yaml:"hits"`
	Misses        int64   `json:"misses" yaml:"misses"`
	Sets          int64   `json:"sets" yaml:"sets"`
	Invalidations int64   `json:"invalidations" yaml:"invalidations"`
	Evictions     int64   `json:"evictions" yaml:"evictions"`
	HitRate       float64 `json:"hit_rate" yaml:"hit_rate"`
}

// NewRenderCache creates a cache holding at most maxSize bytes. A ttl of
// zero keeps entries until they are invalidated or evicted.
func NewRenderCache(maxSize int64, ttl time.Duration) *RenderCache {
	cache := &RenderCache{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}

	// Initialize LRU doubly-linked list with dummy head and tail
	cache.head = &Entry{}
	cache.tail = &Entry{}
	cache.head.next = cache.tail
	cache.tail.prev = cache.head

	return cache
}

// Get retrieves a response from the cache
func (rc *RenderCache) Get(key string) (*Entry, bool) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	entry, exists := rc.entries[key]
	if !exists {
		atomic.AddInt64(&rc.misses, 1)
		return nil, false
	}

	if rc.expired(entry) {
		rc.remove(entry)
		atomic.AddInt64(&rc.misses, 1)
		return nil, false
	}

	// Move to front (mark as recently used)
	rc.moveToFront(entry)
	entry.AccessedAt = rc.now()
	atomic.AddInt64(&rc.hits, 1)

	copied := *entry
	copied.prev, copied.next = nil, nil
	return &copied, true
}

// Set stores a response in the cache. Values larger than the cache are not
// stored.
func (rc *RenderCache) Set(key string, value []byte, contentType string) {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	rc.set(key, value, contentType)
}

// SetIf stores a response only when valid reports true. valid is called
// with the cache locked, so a concurrent Invalidate either runs before the
// check or removes the stored entry afterwards.
func (rc *RenderCache) SetIf(key string, value []byte, contentType string, valid func() bool) bool {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if !valid() {
		return false
	}
	return rc.set(key, value, contentType)
}

func (rc *RenderCache) set(key string, value []byte, contentType string) bool {
	size := int64(len(value))
	if size > rc.maxSize {
		return false
	}

	if existing, exists := rc.entries[key]; exists {
		rc.remove(existing)
	}

	rc.evictIfNeeded(size)

	now := rc.now()
	entry := &Entry{
		Key:         key,
		Value:       value,
		ContentType: contentType,
		CreatedAt:   now,
		AccessedAt:  now,
		Size:        size,
	}

	rc.entries[key] = entry
	rc.currentSize += size
	rc.addToFront(entry)
	atomic.AddInt64(&rc.sets, 1)

	return true
}

// Invalidate drops the given keys and returns how many were present.
func (rc *RenderCache) Invalidate(keys ...string) int {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	removed := 0
	for _, key := range keys {
		if entry, exists := rc.entries[key]; exists {
			rc.remove(entry)
			removed++
		}
	}
	atomic.AddInt64(&rc.invalidations, 1)

	return removed
}

// Clear clears all cache entries and resets statistics
func (rc *RenderCache) Clear() {
	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	rc.entries = make(map[string]*Entry)
	rc.currentSize = 0

	rc.head.next = rc.tail
	rc.tail.prev = rc.head

	atomic.StoreInt64(&rc.hits, 0)
	atomic.StoreInt64(&rc.misses, 0)
	atomic.StoreInt64(&rc.sets, 0)
	atomic.StoreInt64(&rc.invalidations, 0)
	atomic.StoreInt64(&rc.evictions, 0)
}

// Stats returns cache statistics
func (rc *RenderCache) Stats() Stats {
	rc.mutex.Lock()
	count := len(rc.entries)
	size := rc.currentSize
	rc.mutex.Unlock()

	hits := atomic.LoadInt64(&rc.hits)
	misses := atomic.LoadInt64(&rc.misses)

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:       count,
		Size:          size,
		MaxSize:       rc.maxSize,
		Hits:          hits,
		Misses:        misses,
		Sets:          atomic.LoadInt64(&rc.sets),
		Invalidations: atomic.LoadInt64(&rc.invalidations),
		Evictions:     atomic.LoadInt64(&rc.evictions),
		HitRate:       rate,
	}
}

func (rc *RenderCache) expired(entry *Entry) bool {
	return rc.ttl > 0 && rc.now().Sub(entry.CreatedAt) > rc.ttl
}

// evictIfNeeded evicts entries if cache would exceed max size
func (rc *RenderCache) evictIfNeeded(newSize int64) {
	for rc.currentSize+newSize > rc.maxSize && rc.tail.prev != rc.head {
		rc.remove(rc.tail.prev)
		atomic.AddInt64(&rc.evictions, 1)
	}
}

func (rc *RenderCache) remove(entry *Entry) {
	rc.removeFromList(entry)
	delete(rc.entries, entry.Key)
	rc.currentSize -= entry.Size
}

// LRU doubly-linked list operations
func (rc *RenderCache) addToFront(entry *Entry) {
	entry.prev = rc.head
	entry.next = rc.head.next
	rc.head.next.prev = entry
	rc.head.next = entry
}

func (rc *RenderCache) removeFromList(entry *Entry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (rc *RenderCache) moveToFront(entry *Entry) {
	rc.removeFromList(entry)
	rc.addToFront(entry)
}
