// Package cache holds recently produced reports in memory, keyed by a hash
// of everything that determines their content.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Entry is one cached value.
type Entry[V any] struct {
	Key       string
	Value     V
	CreatedAt time.Time
	ExpiresAt time.Time
	HitCount  int64
}

// IsExpired reports whether the entry has expired at t. A zero ExpiresAt
// never expires.
func (e *Entry[V]) IsExpired(t time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return t.After(e.ExpiresAt)
}

// Cache is a thread-safe in-memory cache with TTL and a size bound. When
// full, the oldest entry is evicted.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*Entry[V]
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

// Option configures a Cache.
type Option func(*settings)

type settings struct {
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

// WithMaxSize sets the maximum number of entries
func WithMaxSize(n int) Option {
	return func(s *settings) {
		s.maxSize = n
	}
}

// WithTTL sets the default time-to-live for entries. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(s *settings) {
		s.ttl = d
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// New creates a cache. Defaults: 1000 entries, one hour TTL.
func New[V any](opts ...Option) *Cache[V] {
	s := settings{maxSize: 1000, ttl: time.Hour, now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[V]{
		entries: make(map[string]*Entry[V]),
		maxSize: s.maxSize,
		ttl:     s.ttl,
		now:     s.now,
	}
}

// Get returns the value stored under key if present and not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if entry.IsExpired(c.now()) {
		delete(c.entries, key)
		c.misses++
		return zero, false
	}
	entry.HitCount++
	c.hits++
	return entry.Value, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 {
		return
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := c.now()
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}
	c.entries[key] = &Entry[V]{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
}

// Delete removes an entry.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*Entry[V])
}

// Size returns the current number of entries.
func (c *Cache[V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats holds cache statistics.
type Stats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	HitRate   float64 `json:"hit_rate"`
	Size      int     `json:"size"`
	MaxSize   int     `json:"max_size"`
	Evictions int64   `json:"evictions"`
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		HitRate:   hitRate,
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Evictions: c.evictions,
	}
}

// Cleanup removes all expired entries and returns how many were removed.
func (c *Cache[V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			delete(c.entries, key)
			count++
		}
	}
	return count
}

// evictOldest removes the entry with the earliest creation time.
// Must be called with the lock held.
func (c *Cache[V]) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.CreatedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.CreatedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

// GenerateKey hashes the components into a key. Components are separated
// so that ("ab", "c") and ("a", "bc") differ.
func GenerateKey(components ...string) string {
	h := sha256.New()
	for i, comp := range components {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(comp))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ReportKey is the key of a report for a source text in a language under
// a given rule set fingerprint.
func ReportKey(language, ruleset, source string) string {
	return GenerateKey(language, ruleset, source)
}
